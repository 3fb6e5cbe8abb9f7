package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"typingtutor/backend/config"
	"typingtutor/backend/models"
	"typingtutor/backend/utils"
)

var (
	app      *fiber.App
	db       *gorm.DB
	cfg      *config.Config
	jwtToken string
	testText models.TypingText
)

func TestMain(m *testing.M) {
	setup()
	code := m.Run()
	os.Exit(code)
}

func setup() {
	cfg = &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: "file:api_test?mode=memory&cache=shared",
		JWTSecret:  "testsecret",
		ServerPort: "8080",
	}

	var err error
	db, err = utils.InitDB(cfg)
	if err != nil {
		panic(err)
	}

	app = fiber.New()
	SetupRoutes(app, db, cfg)

	testText = models.TypingText{
		Title:    "Pangram",
		Content:  "the quick brown fox jumps over the lazy dog",
		IsActive: true,
	}
	db.Create(&testText)
}

func postJSON(t *testing.T, path string, body interface{}, token string) (map[string]interface{}, int) {
	t.Helper()

	jsonData, err := json.Marshal(body)
	assert.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewBuffer(jsonData))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	assert.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode
}

func getJSON(t *testing.T, path, token string) (map[string]interface{}, int) {
	t.Helper()

	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req)
	assert.NoError(t, err)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode
}

func TestAPI(t *testing.T) {
	t.Run("Register", testRegister)
	t.Run("RegisterDuplicate", testRegisterDuplicate)
	t.Run("Login", testLogin)
	t.Run("GetProfile", testGetProfile)
	t.Run("SubmitSession", testSubmitSession)
	t.Run("GetStats", testGetStats)
	t.Run("Leaderboard", testLeaderboard)
	t.Run("ChallengeCompletedOnce", testChallengeCompletedOnce)
	t.Run("Unauthorized", testUnauthorized)
}

func testRegister(t *testing.T) {
	result, status := postJSON(t, "/api/auth/register", map[string]string{
		"username": "apiuser",
		"email":    "apiuser@example.com",
		"password": "password123",
	}, "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])
	assert.NotEmpty(t, result["user"])
}

func testRegisterDuplicate(t *testing.T) {
	result, status := postJSON(t, "/api/auth/register", map[string]string{
		"username": "apiuser",
		"email":    "apiuser@example.com",
		"password": "password123",
	}, "")

	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, false, result["success"])
}

func testLogin(t *testing.T) {
	result, status := postJSON(t, "/api/auth/login", map[string]string{
		"email":    "apiuser@example.com",
		"password": "password123",
	}, "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, result["token"])

	jwtToken = result["token"].(string)
}

func testGetProfile(t *testing.T) {
	result, status := getJSON(t, "/api/user/profile", jwtToken)

	assert.Equal(t, fiber.StatusOK, status)
	user := result["user"].(map[string]interface{})
	assert.Equal(t, "apiuser", user["username"])
	assert.NotEmpty(t, result["profile"])
}

func testSubmitSession(t *testing.T) {
	result, status := postJSON(t, "/api/typing/sessions", map[string]interface{}{
		"typing_text_id":     testText.ID,
		"words_per_minute":   45.0,
		"accuracy":           93.0,
		"words_typed":        90,
		"characters_typed":   430,
		"errors_made":        6,
		"time_taken_seconds": 120.0,
	}, jwtToken)

	assert.Equal(t, fiber.StatusCreated, status)
	data := result["data"].(map[string]interface{})
	outcome := data["outcome"].(map[string]interface{})
	assert.Equal(t, float64(1), outcome["streak_count"])
	assert.NotEmpty(t, data["session"])
}

func testGetStats(t *testing.T) {
	result, status := getJSON(t, "/api/analytics/stats", jwtToken)

	assert.Equal(t, fiber.StatusOK, status)
	stats := result["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["total_sessions"])
	assert.Equal(t, 45.0, stats["best_wpm"])
	assert.Equal(t, "advanced", result["typing_level"])
}

func testLeaderboard(t *testing.T) {
	result, status := getJSON(t, "/api/analytics/leaderboard?metric=wpm", jwtToken)

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "wpm", result["metric"])
	board := result["leaderboard"].([]interface{})
	assert.NotEmpty(t, board)
	first := board[0].(map[string]interface{})
	assert.Equal(t, "apiuser@example.com", first["user_email"])
}

func testChallengeCompletedOnce(t *testing.T) {
	targetWPM := 30
	challenge := models.TypingChallenge{
		Title:         "Weekly Sprint",
		ChallengeType: "speed",
		TargetWPM:     &targetWPM,
		StartDate:     time.Now().Add(-time.Hour),
		EndDate:       time.Now().Add(time.Hour),
		IsActive:      true,
		// No points reward; completion must still be tracked
		PointsReward: 0,
	}
	db.Create(&challenge)

	joinPath := fmt.Sprintf("/api/typing/challenges/%d/join", challenge.ID)
	_, status := postJSON(t, joinPath, nil, jwtToken)
	assert.Equal(t, fiber.StatusCreated, status)

	// The same qualifying result resubmitted must complete the
	// challenge exactly once
	resultPath := fmt.Sprintf("/api/typing/challenges/%d/result", challenge.ID)
	for i := 0; i < 3; i++ {
		_, status = postJSON(t, resultPath, map[string]interface{}{
			"wpm":      45.0,
			"accuracy": 95.0,
		}, jwtToken)
		assert.Equal(t, fiber.StatusOK, status)
	}

	result, status := getJSON(t, "/api/analytics/stats", jwtToken)
	assert.Equal(t, fiber.StatusOK, status)
	stats := result["stats"].(map[string]interface{})
	assert.Equal(t, float64(1), stats["challenges_completed"])

	var participation models.ChallengeParticipation
	db.Where("challenge_id = ?", challenge.ID).First(&participation)
	assert.True(t, participation.IsCompleted)
	assert.NotNil(t, participation.CompletedAt)
	assert.Equal(t, 3, participation.TotalSessions)
}

func testUnauthorized(t *testing.T) {
	_, status := getJSON(t, "/api/typing/dashboard", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

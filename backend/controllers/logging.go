package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// LogSideEffect records a best-effort failure without failing the
// request; the primary write has already succeeded.
func LogSideEffect(c *fiber.Ctx, err error) {
	if err != nil {
		log.Printf("side effect failed on %s %s: %v", c.Method(), c.Path(), err)
	}
}

package serverutils

import (
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesquest-be/internal/apperror"
	"notesquest-be/internal/pkg/logger"
)

func newTestApp(t *testing.T, err error) *fiber.App {
	t.Helper()

	log := logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false)
	app := fiber.New(fiber.Config{
		ErrorHandler: NewErrorHandler(log),
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return err
	})
	return app
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", apperror.NewValidationError("content", "content too short"), fiber.StatusBadRequest},
		{"not found", apperror.NewNotFoundError("document", "abc"), fiber.StatusNotFound},
		{"exhausted", &apperror.AllProvidersExhausted{Failures: []apperror.AttemptFailure{{Provider: "ai-service", Reason: "status 503"}}}, fiber.StatusServiceUnavailable},
		{"parse", &apperror.ParseError{Kind: "quiz", Message: "no questions"}, fiber.StatusBadGateway},
		{"ingestion", &apperror.IngestionFailed{Stage: "decide", Err: errors.New("unsupported file type")}, fiber.StatusUnprocessableEntity},
		{"streaming", &apperror.StreamingError{Message: "connection lost"}, fiber.StatusBadGateway},
		{"timeout", &apperror.UpstreamTimeout{Provider: "mistral", Err: errors.New("deadline exceeded")}, fiber.StatusGatewayTimeout},
		{"upstream", &apperror.UpstreamError{Provider: "openai", Status: 500, Err: errors.New("internal")}, fiber.StatusBadGateway},
		{"fiber error", fiber.NewError(fiber.StatusConflict, "busy"), fiber.StatusConflict},
		{"unknown", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, tc.err)

			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

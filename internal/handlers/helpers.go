package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "finbot/internal/errors"
	"finbot/internal/logger"
)

// renderError turns err into the user-facing reply. AppErrors show their
// message and code; anything else is logged and shown as an internal error.
func renderError(ctx context.Context, err error) string {
	log := logger.FromContext(ctx)

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		log.Errorw("unexpected error", "error", err.Error())
		appErr = apperrors.ErrInternalServer
	} else if appErr.Internal != nil {
		log.Errorw("app error",
			"code", appErr.Code,
			"internal", appErr.Internal.Error(),
		)
	}

	return fmt.Sprintf("❌ %s\ncode: %s", appErr.Message, appErr.Code)
}

// errorResponse is the reply for a failed command.
func errorResponse(ctx context.Context, err error) Response {
	return Response{Text: renderError(ctx, err)}
}

// joinParagraphs joins the non-empty parts with a blank line.
func joinParagraphs(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// parseID parses the positive integer argument of a command like /delete_card 12.
func parseID(args, usage string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(args), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.WithMessage(apperrors.ErrInvalidInput, usage)
	}
	return uint(id), nil
}

package bot

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	apperrors "finbot/internal/errors"
)

const pollTimeoutSeconds = 30

// Poll reads updates with long polling until ctx is cancelled.
func Poll(ctx context.Context, api *tgbotapi.BotAPI, d *Dispatcher, log *zap.SugaredLogger) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := api.GetUpdatesChan(cfg)
	defer api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case tu, ok := <-updates:
			if !ok {
				return
			}
			_ = enqueue(d, tu, log)
		}
	}
}

// WebhookHandler accepts updates pushed by Telegram. The reply is sent
// asynchronously, so Telegram always gets a quick 200.
//
// @Summary     Receive a Telegram update
// @Description Accepts an update pushed by Telegram. Replies are sent asynchronously through the Bot API.
// @Tags        telegram
// @Accept      json
// @Security    TelegramSecret
// @Param       update body object true "Telegram Update object"
// @Success     200 "Update accepted"
// @Failure     400 "Malformed update"
// @Failure     401 "Invalid or missing webhook secret"
// @Failure     500 "Update queue is closed"
// @Failure     503 "Webhook secret is not configured"
// @Router      /telegram/webhook [post]
func WebhookHandler(d *Dispatcher, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tu tgbotapi.Update
		if err := c.ShouldBindJSON(&tu); err != nil {
			_ = c.Error(apperrors.Wrap(apperrors.ErrInvalidInput, err))
			return
		}
		if err := enqueue(d, tu, log); err != nil {
			_ = c.Error(apperrors.Wrap(apperrors.ErrInternalServer, err))
			return
		}
		c.Status(http.StatusOK)
	}
}

func enqueue(d *Dispatcher, tu tgbotapi.Update, log *zap.SugaredLogger) error {
	u, ok := ToUpdate(tu)
	if !ok {
		log.Debugw("skipping unsupported update", "telegram_update_id", tu.UpdateID)
		return nil
	}
	if err := d.Dispatch(u); err != nil {
		log.Warnw("dropping update", "telegram_update_id", tu.UpdateID, "error", err)
		return err
	}
	return nil
}

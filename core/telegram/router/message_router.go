package router

import (
	"strings"
	"time"
	"unicode"

	tg "github.com/m3rciful/fundbot/core/telegram"
	"github.com/m3rciful/fundbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// Session defines the minimal interface for an in-flight conversation manager.
type Session interface {
	InProgress(userID int64) bool
	Handle(c tele.Context) error
}

// MessageOptions controls attachment routing for message updates.
type MessageOptions struct {
	// Receipt handles document and photo uploads. Attachments never feed
	// the conversation manager.
	Receipt tele.HandlerFunc
}

// MessageRoutes builds handlers for text, document and photo updates.
// Menu labels win over an in-flight conversation; unmatched text outside
// a conversation is dropped without a reply.
func MessageRoutes(sess Session, reg *tg.Registry, opts MessageOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if reg != nil {
			if cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := menuHandlerName(text)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if sess != nil && c.Sender() != nil && sess.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "session", start, "", "", func() error {
				return sess.Handle(c)
			})
		}

		logHandlerSummary(c, "unmatched_text", start, "skip", "ok", nil)
		return nil
	}

	attachmentHandler := func(name string) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			if opts.Receipt != nil {
				return handleWithSummary(c, name, start, "", "", func() error {
					return opts.Receipt(c)
				})
			}
			logHandlerSummary(c, name, start, "skip", "ok", nil)
			return nil
		}
	}

	return []tg.Route{
		{
			Endpoint: tele.OnText,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
		},
		{
			Endpoint: tele.OnDocument,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(attachmentHandler("receipt_document"))),
		},
		{
			Endpoint: tele.OnPhoto,
			Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(attachmentHandler("receipt_photo"))),
		},
	}
}

// menuHandlerName turns a reply-keyboard label into a log-friendly handler name,
// dropping the leading emoji if present.
func menuHandlerName(label string) string {
	trimmed := strings.TrimLeftFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '/'
	})
	if trimmed == "" {
		trimmed = label
	}
	return normalizeHandlerName(trimmed)
}

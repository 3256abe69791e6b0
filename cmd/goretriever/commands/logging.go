package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

// 📢 UserLogger provides user-friendly feedback about retriever operations
type UserLogger struct {
	log zerolog.Logger // for debug/error logging
}

// 🎨 ChangeType represents the kind of change an operation produced
type ChangeType int

const (
	DatasetInstalled ChangeType = iota
	ScriptUpdated
	CacheRemoved
	ChangeSkipped
	ChangeError
)

// 🖼️ Change represents one user-visible outcome of a command
type Change struct {
	Type        ChangeType
	Subject     string
	Description string
	Error       error
}

// 🎯 NewUserLogger creates a new user logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// 📝 LogChange logs a change with appropriate emoji and formatting
func (u *UserLogger) LogChange(change Change) {
	var prefix, action string
	var printer *pterm.PrefixPrinter
	switch change.Type {
	case DatasetInstalled:
		prefix = "✨"
		action = "Installed"
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: prefix})
	case ScriptUpdated:
		prefix = "🔄"
		action = "Updated"
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: prefix})
	case CacheRemoved:
		prefix = "🗑️"
		action = "Removed"
		printer = pterm.Warning.WithPrefix(pterm.Prefix{Text: prefix})
	case ChangeSkipped:
		prefix = "⏭️"
		action = "Skipped"
		printer = pterm.Debug.WithPrefix(pterm.Prefix{Text: prefix})
	case ChangeError:
		prefix = "❌"
		action = "Error"
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: prefix})
	}

	msg := fmt.Sprintf("%s %s", action, change.Subject)
	if change.Description != "" {
		msg += fmt.Sprintf(" (%s)", change.Description)
	}

	if change.Error != nil {
		printer.Println(msg)
		pterm.Error.Println(change.Error)
		u.log.Error().Err(change.Error).Msg(msg)
	} else {
		printer.Println(msg)
		u.log.Info().Msg(msg)
	}
}

// 🔍 LogValidation logs validation results
func (u *UserLogger) LogValidation(valid bool, description string, err error) {
	if valid {
		pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"}).Println(description)
		u.log.Info().Msg(description)
	} else {
		if err != nil {
			pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).Println(description)
			pterm.Error.Println(err)
			u.log.Error().Err(err).Msg(description)
		} else {
			pterm.Warning.WithPrefix(pterm.Prefix{Text: "⚠️"}).Println(description)
			u.log.Warn().Msg(description)
		}
	}
}

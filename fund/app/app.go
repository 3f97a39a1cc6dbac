// Package app wires the fund ledger and conversation engine into
// Telegram handlers.
package app

import (
	coreconfig "github.com/m3rciful/fundbot/core/config"
	tg "github.com/m3rciful/fundbot/core/telegram"
	"github.com/m3rciful/fundbot/core/telegram/commands"
	"github.com/m3rciful/fundbot/core/telegram/router"
	"github.com/m3rciful/fundbot/fund/admin"
	"github.com/m3rciful/fundbot/fund/ledger"
	"github.com/m3rciful/fundbot/fund/session"

	tele "gopkg.in/telebot.v4"
)

// App holds all dependencies needed by the bot handlers.
type App struct {
	cfg    *coreconfig.Config
	ledger *ledger.Ledger
	engine *session.Engine
	roles  admin.RoleAPI
}

// Deps contains all dependencies required to construct an App.
type Deps struct {
	Cfg    *coreconfig.Config
	Ledger *ledger.Ledger
	Engine *session.Engine
	// Roles overrides the role lookup API. When nil, handlers fall
	// back to the bot instance from the incoming context.
	Roles admin.RoleAPI
}

// New creates a new App from the provided dependencies.
func New(deps Deps) *App {
	return &App{
		cfg:    deps.Cfg,
		ledger: deps.Ledger,
		engine: deps.Engine,
		roles:  deps.Roles,
	}
}

// roleAPI resolves the role lookup backend for a given update.
func (a *App) roleAPI(c tele.Context) admin.RoleAPI {
	if a.roles != nil {
		return a.roles
	}
	return c.Bot()
}

// BuildRegistry registers all menu entries and callbacks.
func (a *App) BuildRegistry() *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.handleStart,
		Description: "Show the fund menu",
	})
	reg.RegisterCommand(LabelRegister, commands.Command{Handler: a.handleRegister})
	reg.RegisterCommand(LabelPayment, commands.Command{Handler: a.handlePayment})
	reg.RegisterCommand(LabelMembers, commands.Command{Handler: a.handleMembers})
	reg.RegisterCommand(LabelMyShares, commands.Command{Handler: a.handleMyShares})
	reg.RegisterCommand(LabelHelp, commands.Command{Handler: a.handleHelp})
	reg.RegisterCommand(LabelPending, commands.Command{Handler: a.handlePending, AdminOnly: true})
	reg.RegisterCommand(LabelReset, commands.Command{Handler: a.handleResetStart, AdminOnly: true})

	reg.RegisterCallback(cbShares, a.handleSharesCallback)
	reg.RegisterCallback(cbCustomShares, a.handleCustomSharesCallback)
	reg.RegisterCallback(cbPayNow, a.handlePayNowCallback)

	return reg
}

// BuildRunOptions assembles the full bot wiring for RunTelegram.
func (a *App) BuildRunOptions() tg.RunOptions {
	reg := a.BuildRegistry()

	routes := router.MessageRoutes(a.sessionAdapter(), reg, router.MessageOptions{
		Receipt: a.handleReceipt,
	})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return tg.RunOptions{
		Config:      a.cfg,
		Registry:    reg,
		Middlewares: tg.DefaultMiddlewares(a.cfg, nil),
		Routes:      routes,
	}
}

// sessionAdapter exposes the engine through the router's Session interface.
func (a *App) sessionAdapter() router.Session {
	return sessionAdapter{app: a}
}

type sessionAdapter struct{ app *App }

func (s sessionAdapter) InProgress(userID int64) bool {
	return s.app.engine.InProgress(userID)
}

func (s sessionAdapter) Handle(c tele.Context) error {
	return s.app.handleSessionText(c)
}

// Copyright (c) 2025 ParcBudget Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parcbudget/parcbudget-tui/internal/api"
	"github.com/parcbudget/parcbudget-tui/internal/auth"
	"github.com/parcbudget/parcbudget-tui/internal/config"
	"github.com/parcbudget/parcbudget-tui/internal/idle"
	"github.com/parcbudget/parcbudget-tui/internal/storage"
	"github.com/parcbudget/parcbudget-tui/internal/ui/components"
	"github.com/parcbudget/parcbudget-tui/internal/ui/styles"
)

const requestTimeout = 30 * time.Second

// =============================================================================
// ROOT MODEL
// =============================================================================

// Screen is what the route guard currently shows.
type Screen int

const (
	// ScreenLoading is shown while the stored session is being restored.
	ScreenLoading Screen = iota

	// ScreenLogin is shown when there is no authenticated session.
	ScreenLogin

	// ScreenDashboard is the authenticated home screen.
	ScreenDashboard
)

// Model is the root Bubble Tea model: session-driven screen switching,
// activity signal publishing, and the idle warning overlay.
type Model struct {
	cfg     *config.Config
	client  *api.Client
	session *auth.Session
	cache   *storage.CatalogCache // nil when the catalog cache is disabled

	activity *idle.Broadcaster
	monitor  *idle.Monitor
	// idleEvents bridges monitor callbacks (scheduler goroutine) into the
	// Bubble Tea update loop.
	idleEvents chan tea.Msg

	theme     *styles.Theme
	loading   components.Loading
	login     loginForm
	dashboard dashboard
	overlay   components.IdleOverlay
	statusBar *components.StatusBar

	// rateLive is set once the backend settings payload supplied the
	// conversion rate; the config fallback stops applying from then on.
	rateLive bool

	width    int
	height   int
	quitting bool
}

// NewModel creates the root model. The session must not be hydrated yet;
// hydration runs as the model's first command.
func NewModel(cfg *config.Config, client *api.Client, session *auth.Session, cache *storage.CatalogCache) *Model {
	theme := styles.NewTheme()
	theme.Compact = cfg.UI.CompactMode

	statusBar := components.NewStatusBar(theme)
	statusBar.BackendURL = cfg.Backend.URL
	statusBar.SetRate(cfg.Currency.EURToMADFallback)

	return &Model{
		cfg:        cfg,
		client:     client,
		session:    session,
		cache:      cache,
		activity:   idle.NewBroadcaster(),
		idleEvents: make(chan tea.Msg, 16),
		theme:      theme,
		loading:    components.NewLoading("Restoring session..."),
		login:      newLoginForm(theme),
		dashboard:  newDashboard(theme),
		overlay:    components.NewIdleOverlay(),
		statusBar:  statusBar,
	}
}

// Screen derives the visible screen from the session state.
func (m *Model) Screen() Screen {
	switch {
	case m.session.State() == auth.Hydrating:
		return ScreenLoading
	case m.session.User() == nil:
		return ScreenLogin
	default:
		return ScreenDashboard
	}
}

// Activity exposes the activity broadcaster, used by tests and by any
// future input source outside the Bubble Tea loop.
func (m *Model) Activity() *idle.Broadcaster {
	return m.activity
}

// Init starts session restore and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loading.Tick(),
		m.hydrateCmd(),
		m.waitForIdleEvent(),
	)
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) hydrateCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return hydratedMsg{err: m.session.Hydrate(ctx)}
	}
}

func (m *Model) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return loginDoneMsg{err: m.session.Login(ctx, username, password)}
	}
}

func (m *Model) loadSettingsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		settings, err := m.client.Settings(ctx)
		return settingsLoadedMsg{settings: settings, err: err}
	}
}

func (m *Model) loadProjectsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		projects, err := m.client.ListProjects(ctx)
		return projectsLoadedMsg{projects: projects, err: err}
	}
}

func (m *Model) loadNeedsCmd(projectID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		needs, err := m.client.ListNeeds(ctx, projectID)
		return needsLoadedMsg{projectID: projectID, needs: needs, err: err}
	}
}

// refreshCatalogCmd refetches the material catalog into the local cache
// when it has gone stale.
func (m *Model) refreshCatalogCmd() tea.Cmd {
	if m.cache == nil || !m.cache.IsStale(m.cfg.StaleAfter()) {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		categories, err := m.client.ListCategories(ctx)
		if err != nil {
			return catalogRefreshedMsg{err: err}
		}
		materials, err := m.client.ListMaterials(ctx)
		if err != nil {
			return catalogRefreshedMsg{err: err}
		}
		if err := m.cache.ReplaceCatalog(categories, materials); err != nil {
			return catalogRefreshedMsg{err: err}
		}
		return catalogRefreshedMsg{materials: len(materials)}
	}
}

// waitForIdleEvent forwards the next monitor callback into the update loop.
func (m *Model) waitForIdleEvent() tea.Cmd {
	return func() tea.Msg {
		return <-m.idleEvents
	}
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// startSession begins the authenticated phase: a fresh idle monitor is
// created and armed, and the dashboard data loads kick off.
func (m *Model) startSession() tea.Cmd {
	m.statusBar.SetUser(m.session.User(), m.client.TokenFingerprint())

	m.monitor = idle.NewMonitor(m.activity, idle.Callbacks{
		OnWarning: func(remaining time.Duration) {
			m.pushIdleEvent(idleWarnMsg{remaining: remaining})
		},
		OnTick: func(remaining time.Duration) {
			m.pushIdleEvent(idleTickMsg{remaining: remaining})
		},
		OnClear: func() {
			m.pushIdleEvent(idleClearMsg{})
		},
		OnExpire: func() {
			m.pushIdleEvent(idleExpiredMsg{})
		},
	})
	m.monitor.Start()

	return tea.Batch(
		m.loadProjectsCmd(),
		m.loadSettingsCmd(),
		m.refreshCatalogCmd(),
	)
}

// endSession tears the authenticated phase down. The monitor is stopped
// before the session is touched so no timer can fire mid-teardown.
func (m *Model) endSession(notice string) {
	if m.monitor != nil {
		m.monitor.Stop()
		m.monitor = nil
	}
	m.overlay.Hide()
	m.statusBar.SetUser(nil, "")
	m.login.reset()
	if notice != "" {
		m.login.setNotice(notice)
	}
}

// pushIdleEvent hands a monitor callback to the update loop without ever
// blocking the scheduler goroutine.
func (m *Model) pushIdleEvent(msg tea.Msg) {
	select {
	case m.idleEvents <- msg:
	default:
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update is the root message handler.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.statusBar.SetWidth(msg.Width)
		m.overlay.SetSize(msg.Width, msg.Height)
		m.dashboard.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.publishMouse(msg)
		return m, nil

	case hydratedMsg:
		return m.handleHydrated(msg)

	case loginDoneMsg:
		if msg.err != nil {
			m.login.setError(msg.err.Error())
			return m, nil
		}
		return m, m.startSession()

	case settingsLoadedMsg:
		if msg.err == nil && msg.settings != nil && msg.settings.EURToMAD > 0 {
			m.statusBar.SetRate(msg.settings.EURToMAD)
			m.rateLive = true
		}
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case projectsLoadedMsg:
		return m.handleProjectsLoaded(msg)

	case needsLoadedMsg:
		if msg.err != nil {
			m.dashboard.SetError("Could not load needs: " + msg.err.Error())
			return m, nil
		}
		m.dashboard.SetNeeds(msg.projectID, msg.needs)
		return m, nil

	case catalogRefreshedMsg:
		if msg.err == nil && msg.materials > 0 {
			m.dashboard.SetCatalogNote(fmt.Sprintf("catalog: %d materials cached", msg.materials))
		}
		return m, nil

	case refreshRequestedMsg:
		return m, m.loadProjectsCmd()

	case needsRequestedMsg:
		return m, m.loadNeedsCmd(msg.projectID)

	case loginSubmitMsg:
		return m, m.loginCmd(msg.username, msg.password)

	case components.StayLoggedInMsg:
		if m.monitor != nil {
			m.monitor.StayLoggedIn()
		}
		return m, nil

	case components.LogoutNowMsg:
		if m.monitor != nil {
			m.monitor.LogoutNow()
		}
		return m, nil

	case idleWarnMsg:
		m.overlay.Show(msg.remaining)
		return m, m.waitForIdleEvent()

	case idleTickMsg:
		m.overlay.UpdateRemaining(msg.remaining)
		return m, m.waitForIdleEvent()

	case idleClearMsg:
		m.overlay.Hide()
		return m, m.waitForIdleEvent()

	case idleExpiredMsg:
		// Logout is local-first: the backend notification runs in the
		// background, so the guard can redirect on this same frame.
		m.endSession("You were logged out due to inactivity.")
		m.session.Logout()
		return m, m.waitForIdleEvent()
	}

	// Spinner and other component-internal messages.
	if m.Screen() == ScreenLoading {
		var cmd tea.Cmd
		m.loading, cmd = m.loading.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey routes key input: the warning overlay eats everything while it
// is open; otherwise keys feed the active screen and count as activity.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal overlay captures all input. Keys routed here do not count as
	// activity; the overlay's stay/logout choice drives the monitor.
	if m.overlay.IsVisible() {
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return m, cmd
	}

	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.Screen() {
	case ScreenLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd

	case ScreenDashboard:
		m.activity.Publish(idle.SignalKey)

		if msg.String() == "ctrl+l" {
			m.endSession("")
			m.session.Logout()
			return m, nil
		}
		if msg.String() == "q" {
			m.quitting = true
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		return m, cmd
	}

	return m, nil
}

// publishMouse maps mouse events to activity signals.
func (m *Model) publishMouse(msg tea.MouseMsg) {
	if m.Screen() != ScreenDashboard {
		return
	}
	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		m.activity.Publish(idle.SignalScroll)
	default:
		m.activity.Publish(idle.SignalPointer)
	}
}

// handleConfigReloaded applies an edited config file to the running UI.
// Only display settings are taken; the backend URL and cache wiring stay
// as they were at startup.
func (m *Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}
	m.cfg.UI = msg.Config.UI
	m.cfg.Currency = msg.Config.Currency
	m.theme.Compact = m.cfg.UI.CompactMode

	// The live backend rate always wins over the file's fallback.
	if !m.rateLive {
		m.statusBar.SetRate(m.cfg.Currency.EURToMADFallback)
	}
	return m, nil
}

// handleHydrated finishes session restore.
func (m *Model) handleHydrated(msg hydratedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil || m.session.User() == nil {
		// Any restore failure lands on the login screen; the session has
		// already purged whatever token it could not use.
		return m, nil
	}
	return m, m.startSession()
}

// handleProjectsLoaded refreshes the dashboard, invalidating the session
// on an auth failure.
func (m *Model) handleProjectsLoaded(msg projectsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if errors.Is(msg.err, api.ErrUnauthorized) {
			m.session.Invalidate()
			m.endSession("Your session is no longer valid. Please sign in again.")
			return m, nil
		}
		m.dashboard.SetError("Could not load projects: " + msg.err.Error())
		return m, nil
	}
	m.dashboard.SetProjects(msg.projects)
	return m, nil
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the active screen with the status bar, and the idle warning
// overlay on top when open.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.overlay.IsVisible() {
		return m.overlay.View()
	}

	var body string
	switch m.Screen() {
	case ScreenLoading:
		width, height := m.width, m.height
		if width == 0 {
			width = 80
		}
		if height == 0 {
			height = 24
		}
		body = lipgloss.Place(width, height-1, lipgloss.Center, lipgloss.Center, m.loading.View())

	case ScreenLogin:
		body = m.login.View(m.width, m.height-1)

	default:
		body = m.theme.Container.Render(m.dashboard.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar.View())
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"midlo/internal/domain"
	"midlo/internal/eventbus"
	"midlo/internal/maps"
	"midlo/internal/share"
	"midlo/internal/suggest"
	"midlo/internal/ui/handlers"
	"midlo/internal/ui/state"
	"midlo/internal/ui/views"
)

// ReadyMarker is printed with the first frame when e2e mode is on
const ReadyMarker = "__READY__"

const (
	fieldA = iota
	fieldB
)

// Options configure the UI model
type Options struct {
	Bus        eventbus.EventBus
	Lookup     suggest.Lookup
	Suggest    suggest.Options
	WebBaseURL string
	// Messages receives fetcher snapshots and forwarded bus events
	Messages chan tea.Msg
	Pager    Pager
	Actions  Actions
	Logger   *zap.Logger
	// E2E renders ReadyMarker so test drivers know the UI is up
	E2E bool
}

// Model represents the UI state
type Model struct {
	bus          eventbus.EventBus
	msgs         chan tea.Msg
	state        *state.AppState
	eventHandler *handlers.EventHandler
	inputs       [2]*AddressInput
	focus        int

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	styles  *views.Styles

	width  int
	height int

	webBaseURL string
	pager      Pager
	actions    Actions
	log        *zap.Logger
	e2e        bool
	disposed   bool
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	msgs := opts.Messages
	if msgs == nil {
		msgs = make(chan tea.Msg, 256)
	}
	pager := opts.Pager
	if pager == nil {
		pager = NewPagerOps()
	}
	actions := opts.Actions
	if actions == nil {
		actions = SystemActions{}
	}

	suggestOpts := opts.Suggest
	if suggestOpts.Logger == nil {
		suggestOpts.Logger = logger
	}

	appState := state.NewAppState()
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		bus:          opts.Bus,
		msgs:         msgs,
		state:        appState,
		eventHandler: handlers.NewEventHandler(appState),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		styles:       views.NewStyles(),
		webBaseURL:   share.ResolveWebBaseURL(opts.WebBaseURL),
		pager:        pager,
		actions:      actions,
		log:          logger.Named("ui"),
		e2e:          opts.E2E,
	}
	m.inputs[fieldA] = NewAddressInput(fieldA, "Your location", "Start typing an address…", opts.Lookup, suggestOpts, msgs, logger)
	m.inputs[fieldB] = NewAddressInput(fieldB, "Their location", "Start typing an address…", opts.Lookup, suggestOpts, msgs, logger)
	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	if ops, ok := m.pager.(*PagerOps); ok {
		ops.SetProgram(p)
	}
}

// Messages returns the channel the model listens on
func (m *Model) Messages() chan<- tea.Msg {
	return m.msgs
}

// Dispose stops both fetchers. Safe to call more than once.
func (m *Model) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	for _, in := range m.inputs {
		in.Dispose()
	}
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.inputs[fieldA].Focus(), m.waitForMsg())
}

func (m *Model) waitForMsg() tea.Cmd {
	return func() tea.Msg {
		return <-m.msgs
	}
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case SuggestionsMsg:
		if msg.Field >= 0 && msg.Field < len(m.inputs) {
			m.inputs[msg.Field].Apply(msg.View)
		}
		return m, m.waitForMsg()

	case EventMsg:
		m.eventHandler.HandleEvent(msg.Event)
		return m, m.waitForMsg()

	case spinner.TickMsg:
		if !m.state.Searching && !m.state.LoadingDetails {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pagerDoneMsg:
		if msg.err != nil {
			m.state.StatusMessage = "Pager failed: " + msg.err.Error()
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.state.StatusMessage = "Copy failed: " + msg.err.Error()
		} else {
			m.state.StatusMessage = "Copied " + msg.text
		}
		return m, nil

	case openURLMsg:
		if msg.err != nil {
			m.state.StatusMessage = "Could not open link: " + msg.err.Error()
		} else {
			m.state.StatusMessage = "Opened " + msg.url
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.Dispose()
			return m, tea.Quit
		}
		switch m.state.Screen {
		case state.ScreenSearch:
			return m, m.handleSearchKey(msg)
		default:
			return m, m.handleResultKey(msg)
		}

	default:
		// cursor blink and other textinput messages
		return m, m.inputs[m.focus].Update(msg)
	}
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	in := m.inputs[m.focus]

	switch {
	case key.Matches(msg, m.keys.NextField):
		return m.setFocus((m.focus + 1) % len(m.inputs))

	case key.Matches(msg, m.keys.PrevField):
		return m.setFocus((m.focus + len(m.inputs) - 1) % len(m.inputs))

	case key.Matches(msg, m.keys.Up) && in.DropdownVisible():
		in.MoveHighlight(-1)
		return nil

	case key.Matches(msg, m.keys.Down) && in.DropdownVisible():
		in.MoveHighlight(1)
		return nil

	case key.Matches(msg, m.keys.Enter):
		if s, ok := in.Highlighted(); ok {
			in.Select(s)
			if m.focus == fieldA && m.inputs[fieldB].Value() == "" {
				return m.setFocus(fieldB)
			}
			return nil
		}
		return m.submit()

	case key.Matches(msg, m.keys.Close):
		in.CloseDropdown()
		return nil

	// "?" is a legal address character here, so only F1 opens help
	case msg.String() == "f1":
		return showInPager(m.pager, RenderHelpContent())
	}

	return in.Update(msg)
}

func (m *Model) setFocus(field int) tea.Cmd {
	if field == m.focus {
		return nil
	}
	m.inputs[m.focus].Blur()
	m.focus = field
	return m.inputs[field].Focus()
}

// submit starts a midpoint search when both addresses are filled in
func (m *Model) submit() tea.Cmd {
	a := m.inputs[fieldA].Value()
	b := m.inputs[fieldB].Value()
	if a == "" || b == "" {
		m.state.StatusMessage = "Enter both addresses to find the midpoint"
		return nil
	}

	for _, in := range m.inputs {
		in.CloseDropdown()
	}
	m.state.BeginSearch(a, b)
	m.log.Info("midpoint search submitted", zap.String("a", a), zap.String("b", b))
	if m.bus != nil {
		m.bus.Publish(eventbus.MidpointRequestedEvent{AddressA: a, AddressB: b})
	}
	return m.spinner.Tick
}

func (m *Model) handleResultKey(msg tea.KeyMsg) tea.Cmd {
	s := m.state

	switch {
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Close):
		s.Back()
		if s.Screen == state.ScreenSearch {
			return m.inputs[m.focus].Focus()
		}
		return nil

	case key.Matches(msg, m.keys.Help):
		return showInPager(m.pager, RenderHelpContent())

	case s.Screen == state.ScreenPlaces && (key.Matches(msg, m.keys.Up) || msg.String() == "k"):
		s.MoveCursor(-1)
		return nil

	case s.Screen == state.ScreenPlaces && (key.Matches(msg, m.keys.Down) || msg.String() == "j"):
		s.MoveCursor(1)
		return nil

	case s.Screen == state.ScreenPlaces && key.Matches(msg, m.keys.Enter):
		p, ok := s.SelectedPlace()
		if !ok || p.ID == "" {
			return nil
		}
		s.BeginDetails(p.ID)
		if m.bus != nil {
			m.bus.Publish(eventbus.PlaceDetailsRequestedEvent{PlaceID: p.ID})
		}
		return m.spinner.Tick

	case key.Matches(msg, m.keys.Open):
		if url := m.mapsURL(); url != "" {
			return openURLCmd(m.actions, url)
		}
		return nil

	case key.Matches(msg, m.keys.Copy):
		if url := m.shareURL(); url != "" {
			return copyCmd(m.actions, url)
		}
		return nil

	case key.Matches(msg, m.keys.Pager):
		if content := m.pagerContent(); content != "" {
			return showInPager(m.pager, content)
		}
		return nil
	}
	return nil
}

// mapsURL links the focused place in Google Maps, falling back to the midpoint
func (m *Model) mapsURL() string {
	s := m.state
	if s.Screen == state.ScreenDetails && s.Details != nil {
		d := s.Details
		if d.MapsURI != "" {
			return d.MapsURI
		}
		return maps.WebURL(maps.Google, maps.PlaceArgs{
			PlaceID: d.ID, Name: d.Name, FormattedAddress: d.Address, Lat: d.Location.Lat, Lng: d.Location.Lng,
		})
	}
	if p, ok := s.SelectedPlace(); ok {
		return maps.WebURL(maps.Google, maps.PlaceArgs{
			PlaceID: p.ID, Name: p.Name, Lat: p.Location.Lat, Lng: p.Location.Lng,
		})
	}
	if s.Midpoint != nil {
		return maps.LinksFor(s.Midpoint.Lat, s.Midpoint.Lng).Google
	}
	return ""
}

// shareURL links the focused place, or the whole search on the places screen
func (m *Model) shareURL() string {
	s := m.state
	if s.Screen == state.ScreenDetails {
		if s.PendingPlaceID == "" {
			return ""
		}
		return share.PlaceURL(m.webBaseURL, s.PendingPlaceID)
	}
	if s.AddressA == "" || s.AddressB == "" {
		return ""
	}
	var batches [][]string
	if ids := s.PlaceIDs(); len(ids) > 0 {
		batches = [][]string{ids}
	}
	return share.MidpointURL(m.webBaseURL, s.AddressA, s.AddressB, batches, share.NoBatch)
}

func (m *Model) pagerContent() string {
	s := m.state
	if s.Screen == state.ScreenDetails {
		if s.Details == nil {
			return ""
		}
		return views.RenderDetails(m.styles, *s.Details)
	}
	if len(s.Places) == 0 {
		return ""
	}
	return PlacesText(s.AddressA, s.AddressB, s.Midpoint, s.Places)
}

// PlacesText is the plain listing of a search used by the pager and the CLI
func PlacesText(a, b string, midpoint *domain.Coordinate, places []domain.Place) string {
	var out strings.Builder
	fmt.Fprintf(&out, "%s ⇄ %s\n", a, b)
	if midpoint != nil {
		fmt.Fprintf(&out, "Midpoint %s, %s\n", maps.FormatCoord(midpoint.Lat), maps.FormatCoord(midpoint.Lng))
	}
	out.WriteString("\n")
	for i, p := range places {
		fmt.Fprintf(&out, "%2d. %s", i+1, p.Name)
		if p.Distance != "" {
			fmt.Fprintf(&out, " (%s)", p.Distance)
		}
		out.WriteString("\n")
	}
	return out.String()
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Midlo · meet in the middle"))
	b.WriteString("\n")

	switch m.state.Screen {
	case state.ScreenSearch:
		width := min(m.width-4, 72)
		b.WriteString(m.inputs[fieldA].View(m.styles, width))
		b.WriteString("\n\n")
		b.WriteString(m.inputs[fieldB].View(m.styles, width))
		b.WriteString("\n")
		b.WriteString(m.statusLine())
		b.WriteString("\n")
		b.WriteString(m.help.View(searchKeys{m.keys}))

	case state.ScreenPlaces:
		b.WriteString(m.styles.Dim.Render(m.state.AddressA + " ⇄ " + m.state.AddressB))
		b.WriteString("\n\n")
		if m.state.Searching {
			b.WriteString(m.spinner.View() + " Finding a fair place to meet…")
		} else if m.state.ErrorMessage == "" {
			b.WriteString(views.RenderPlaces(m.styles, m.state.Midpoint, m.state.Places, m.state.Cursor, m.height-12))
		}
		b.WriteString("\n")
		b.WriteString(m.statusLine())
		b.WriteString("\n")
		b.WriteString(m.help.View(resultKeys{m.keys}))

	case state.ScreenDetails:
		switch {
		case m.state.LoadingDetails:
			b.WriteString(m.spinner.View() + " Loading place…")
		case m.state.Details != nil:
			b.WriteString(views.RenderDetails(m.styles, *m.state.Details))
		}
		b.WriteString("\n")
		b.WriteString(m.statusLine())
		b.WriteString("\n")
		b.WriteString(m.help.View(resultKeys{m.keys}))
	}

	out := m.styles.Main.Render(b.String())
	if m.e2e {
		out += "\n" + ReadyMarker
	}
	return out
}

func (m *Model) statusLine() string {
	if m.state.ErrorMessage != "" {
		return m.styles.StatusError.Render(m.state.ErrorMessage)
	}
	return m.styles.Status.Render(m.state.StatusMessage)
}

// ForwardEvents subscribes to the events the UI renders and posts them to
// msgs without blocking. The returned func unsubscribes.
func ForwardEvents(bus eventbus.EventBus, msgs chan<- tea.Msg, logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	forward := func(e eventbus.DomainEvent) {
		select {
		case msgs <- EventMsg{Event: e}:
		default:
			logger.Warn("ui message channel full, dropping event", zap.String("type", string(e.Type())))
		}
	}

	var unsubscribers []func()
	for _, t := range []eventbus.EventType{
		eventbus.EventMidpointResolved,
		eventbus.EventPlacesLoaded,
		eventbus.EventPlaceDetailsLoaded,
		eventbus.EventSearchRecorded,
		eventbus.EventError,
	} {
		unsubscribers = append(unsubscribers, bus.Subscribe(t, forward))
	}
	return func() {
		for _, u := range unsubscribers {
			u()
		}
	}
}

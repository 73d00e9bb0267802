// Package ui implements the full-screen interactive package builder.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/devplatform/dpcli/internal/api"
	"github.com/devplatform/dpcli/internal/build"
)

// BuilderOptions configures one builder session.
type BuilderOptions struct {
	Client       *api.Client
	PollInterval time.Duration
	Namespace    string
	OutputDir    string
	CreatedBy    string
	CustomerID   *int64
	ProjectID    *int64
}

// Builder phases.
const (
	phaseLoading = iota
	phaseSelecting
	phaseBuilding
	phaseDone
	phaseFailed
)

// Input focus targets. focusList means the catalog list has the keys.
const (
	focusList = iota
	focusNamespace
	focusDomain
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type model struct {
	ctx  context.Context
	opts BuilderOptions

	phase  int
	focus  int
	cursor int

	sel      *build.Selection
	versions *build.VersionCache

	nsInput     textinput.Model
	domainInput textinput.Model

	spin spinner.Model
	prog progress.Model

	// gen tags async version loads; stale responses are dropped.
	gen int

	hash     string
	status   api.BuildStatus
	final    *api.Build
	savedTo  string
	errLine  string
	quitting bool
}

type catalogLoadedMsg struct {
	addons []api.Addon
	err    error
}

type versionsLoadedMsg struct {
	gen      int
	addonID  int64
	versions []api.AddonVersion
	err      error
}

type submittedMsg struct {
	b   *api.Build
	err error
}

type statusMsg struct {
	st  *api.BuildStatus
	err error
}

type pollTickMsg struct{}

type finalMsg struct {
	b   *api.Build
	err error
}

type downloadedMsg struct {
	path string
	size int64
	err  error
}

// RunBuilder starts the interactive builder and blocks until it exits.
func RunBuilder(ctx context.Context, opts BuilderOptions) error {
	if opts.PollInterval <= 0 {
		opts.PollInterval = build.DefaultPollInterval
	}
	m := initialModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func initialModel(ctx context.Context, opts BuilderOptions) model {
	ns := textinput.New()
	ns.Placeholder = "namespace"
	ns.SetValue(opts.Namespace)
	ns.CharLimit = 63
	ns.Width = 24

	dom := textinput.New()
	dom.Placeholder = "dev.example.com"
	dom.CharLimit = 253
	dom.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctx:         ctx,
		opts:        opts,
		phase:       phaseLoading,
		nsInput:     ns,
		domainInput: dom,
		spin:        sp,
		prog:        progress.New(progress.WithDefaultGradient()),
		versions: build.NewVersionCache(func(ctx context.Context, addonID int64) ([]api.AddonVersion, error) {
			return opts.Client.ListAddonVersions(ctx, addonID)
		}),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadCatalogCmd())
}

func (m model) loadCatalogCmd() tea.Cmd {
	return func() tea.Msg {
		addons, err := m.opts.Client.ListAddons(m.ctx, api.AddonListParams{})
		return catalogLoadedMsg{addons: addons, err: err}
	}
}

func (m model) loadVersionsCmd(gen int, addonID int64) tea.Cmd {
	return func() tea.Msg {
		vs, err := m.versions.Get(m.ctx, addonID)
		return versionsLoadedMsg{gen: gen, addonID: addonID, versions: vs, err: err}
	}
}

func (m model) submitCmd(req api.BuildRequest) tea.Cmd {
	return func() tea.Msg {
		b, err := m.opts.Client.StartBuild(m.ctx, req)
		return submittedMsg{b: b, err: err}
	}
}

func (m model) statusCmd() tea.Cmd {
	hash := m.hash
	return func() tea.Msg {
		st, err := m.opts.Client.GetBuildStatusByHash(m.ctx, hash)
		return statusMsg{st: st, err: err}
	}
}

func (m model) finalCmd() tea.Cmd {
	hash := m.hash
	return func() tea.Msg {
		b, err := m.opts.Client.GetBuildByHash(m.ctx, hash)
		return finalMsg{b: b, err: err}
	}
}

func (m model) downloadCmd() tea.Cmd {
	hash, dir := m.hash, m.opts.OutputDir
	return func() tea.Msg {
		path, size, err := build.DownloadTo(m.ctx, m.opts.Client, hash, dir)
		return downloadedMsg{path: path, size: size, err: err}
	}
}

func (m model) pollTickCmd() tea.Cmd {
	return tea.Tick(m.opts.PollInterval, func(time.Time) tea.Msg { return pollTickMsg{} })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd

	case catalogLoadedMsg:
		if msg.err != nil {
			m.phase = phaseFailed
			m.errLine = msg.err.Error()
			return m, nil
		}
		m.sel = build.NewSelection(msg.addons)
		m.phase = phaseSelecting
		return m, nil

	case versionsLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.errLine = msg.err.Error()
			return m, nil
		}
		m.cycleVersion(msg.addonID, msg.versions)
		return m, nil

	case submittedMsg:
		if msg.err != nil {
			m.phase = phaseSelecting
			m.errLine = msg.err.Error()
			return m, nil
		}
		m.hash = msg.b.BuildHash
		m.status = api.BuildStatus{BuildHash: m.hash, Status: msg.b.Status, Progress: msg.b.Progress}
		return m, m.statusCmd()

	case statusMsg:
		if msg.err != nil {
			m.phase = phaseFailed
			m.errLine = msg.err.Error()
			return m, nil
		}
		m.status = *msg.st
		cmds := []tea.Cmd{m.prog.SetPercent(float64(msg.st.Progress) / 100)}
		switch msg.st.Status {
		case api.BuildStatusSuccess:
			cmds = append(cmds, m.finalCmd())
		case api.BuildStatusFailed:
			m.phase = phaseFailed
			if m.errLine = strings.TrimSpace(msg.st.ErrorMessage); m.errLine == "" {
				m.errLine = "build failed"
			}
		default:
			cmds = append(cmds, m.pollTickCmd())
		}
		return m, tea.Batch(cmds...)

	case pollTickMsg:
		if m.phase != phaseBuilding {
			return m, nil
		}
		return m, m.statusCmd()

	case finalMsg:
		if msg.err != nil {
			m.phase = phaseFailed
			m.errLine = msg.err.Error()
			return m, nil
		}
		m.final = msg.b
		m.phase = phaseDone
		return m, nil

	case downloadedMsg:
		if msg.err != nil {
			m.errLine = msg.err.Error()
			return m, nil
		}
		m.savedTo = fmt.Sprintf("%s (%d bytes)", msg.path, msg.size)
		return m, nil
	}
	return m, nil
}

func (m model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.focus != focusList {
		switch msg.String() {
		case "esc", "enter", "tab":
			return m.cycleFocus()
		}
		var cmd tea.Cmd
		if m.focus == focusNamespace {
			m.nsInput, cmd = m.nsInput.Update(msg)
		} else {
			m.domainInput, cmd = m.domainInput.Update(msg)
		}
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		return m.cycleFocus()
	}

	if m.phase != phaseSelecting || m.sel == nil {
		if m.phase == phaseDone && msg.String() == "d" {
			return m, m.downloadCmd()
		}
		return m, nil
	}

	catalog := m.sel.Catalog()
	switch msg.String() {
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(catalog)-1 {
			m.cursor++
		}
	case " ":
		if ad, ok := m.current(); ok {
			m.sel.Toggle(ad.ID)
		}
	case "a":
		m.sel.SelectAll()
	case "t":
		m.sel.SetTLS(!m.sel.Toggles().TLS)
	case "k":
		m.sel.SetKeycloak(!m.sel.Toggles().Keycloak)
	case "v":
		if ad, ok := m.current(); ok {
			m.errLine = ""
			return m, m.loadVersionsCmd(m.gen, ad.ID)
		}
	case "b":
		return m.startBuild()
	}
	return m, nil
}

func (m model) cycleFocus() (tea.Model, tea.Cmd) {
	m.nsInput.Blur()
	m.domainInput.Blur()
	switch m.focus {
	case focusList:
		m.focus = focusNamespace
		m.nsInput.Focus()
		return m, textinput.Blink
	case focusNamespace:
		m.focus = focusDomain
		m.domainInput.Focus()
		return m, textinput.Blink
	default:
		m.focus = focusList
		return m, nil
	}
}

func (m model) current() (api.Addon, bool) {
	catalog := m.sel.Catalog()
	if m.cursor < 0 || m.cursor >= len(catalog) {
		return api.Addon{}, false
	}
	return catalog[m.cursor], true
}

// cycleVersion advances the pinned version of one add-on through its loaded
// history: latest (unpinned), then each recorded version in order.
func (m *model) cycleVersion(addonID int64, versions []api.AddonVersion) {
	if len(versions) == 0 {
		return
	}
	cur := m.sel.Version(addonID)
	if cur == "" {
		m.sel.SetVersion(addonID, versions[0].Version)
		return
	}
	for i, v := range versions {
		if v.Version == cur {
			if i+1 < len(versions) {
				m.sel.SetVersion(addonID, versions[i+1].Version)
			} else {
				m.sel.SetVersion(addonID, "")
			}
			return
		}
	}
	m.sel.SetVersion(addonID, versions[0].Version)
}

func (m model) startBuild() (tea.Model, tea.Cmd) {
	t := m.sel.Toggles()
	req := api.BuildRequest{
		CustomerID:      m.opts.CustomerID,
		ProjectID:       m.opts.ProjectID,
		Addons:          m.sel.SelectedAddons(),
		Namespace:       strings.TrimSpace(m.nsInput.Value()),
		Domain:          strings.TrimSpace(m.domainInput.Value()),
		TLSEnabled:      t.TLS,
		KeycloakEnabled: t.Keycloak,
		CreatedBy:       m.opts.CreatedBy,
	}
	if err := build.ValidateRequest(&req); err != nil {
		m.errLine = err.Error()
		return m, nil
	}
	m.errLine = ""
	m.gen++
	m.phase = phaseBuilding
	return m, tea.Batch(m.spin.Tick, m.submitCmd(req))
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Package builder"))
	b.WriteString("\n\n")

	switch m.phase {
	case phaseLoading:
		fmt.Fprintf(&b, "%s loading catalog...\n", m.spin.View())
	case phaseSelecting:
		m.viewCatalog(&b)
		m.viewForm(&b)
		b.WriteString(helpStyle.Render("space select · a all · t TLS · k keycloak · v version · tab fields · b build · q quit"))
		b.WriteString("\n")
	case phaseBuilding:
		fmt.Fprintf(&b, "%s building %s\n\n", m.spin.View(), dimStyle.Render(m.hash))
		b.WriteString(m.prog.View())
		fmt.Fprintf(&b, "\n\n%s %d%%\n", m.status.Status, m.status.Progress)
	case phaseDone:
		b.WriteString(okStyle.Render("✓ build succeeded"))
		fmt.Fprintf(&b, "  %s\n", dimStyle.Render(m.hash))
		if m.final != nil && m.final.TotalSize > 0 {
			fmt.Fprintf(&b, "  size: %d bytes\n", m.final.TotalSize)
		}
		if m.savedTo != "" {
			fmt.Fprintf(&b, "  saved: %s\n", m.savedTo)
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("d download · q quit"))
		b.WriteString("\n")
	case phaseFailed:
		b.WriteString(errStyle.Render("✗ " + m.errLine))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		b.WriteString("\n")
	}

	if m.errLine != "" && m.phase == phaseSelecting {
		b.WriteString(errStyle.Render(m.errLine))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) viewCatalog(b *strings.Builder) {
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-3s %-20s %-12s %-14s", "", "ADD-ON", "CATEGORY", "VERSION")))
	b.WriteString("\n")
	for i, ad := range m.sel.Catalog() {
		cursor := "  "
		if i == m.cursor && m.focus == focusList {
			cursor = cursorStyle.Render("> ")
		}
		mark := "[ ]"
		switch {
		case m.sel.Selected(ad.ID) && m.sel.Locked(ad.ID):
			mark = lockedStyle.Render("[*]")
		case m.sel.Selected(ad.ID):
			mark = selectedStyle.Render("[x]")
		}
		version := m.sel.Version(ad.ID)
		if version == "" {
			version = dimStyle.Render("latest")
		}
		fmt.Fprintf(b, "%s%s %-20s %-12s %-14s\n", cursor, mark, ad.Name, ad.Category, version)
	}
	b.WriteString("\n")
}

func (m model) viewForm(b *strings.Builder) {
	t := m.sel.Toggles()
	fmt.Fprintf(b, "  namespace: %s\n", m.nsInput.View())
	fmt.Fprintf(b, "  domain:    %s\n", m.domainInput.View())
	fmt.Fprintf(b, "  TLS %s   Keycloak %s   selected %d\n\n",
		toggleMark(t.TLS), toggleMark(t.Keycloak), m.sel.Count())
}

func toggleMark(on bool) string {
	if on {
		return selectedStyle.Render("on")
	}
	return dimStyle.Render("off")
}

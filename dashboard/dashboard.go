package dashboard

import (
	"fmt"
	"strings"
	"time"

	"tictactoe/engine"
	"tictactoe/metrics"

	tea "github.com/charmbracelet/bubbletea"
)

const recentReports = 8

// Done is sent once when training stops.
type Done struct {
	Metric metrics.BatchMetric
	Err    error
}

type TickMsg time.Time

// Model is a live view of an offline training run.
type Model struct {
	total     int
	startTime time.Time
	updates   <-chan engine.Report
	done      <-chan Done
	cancel    func()

	last    engine.Report
	seen    bool
	recent  []string
	result  *Done
	elapsed time.Duration
}

// New returns a dashboard for a run of total episodes. cancel is called
// when the user quits early.
func New(total int, updates <-chan engine.Report, done <-chan Done, cancel func()) Model {
	return Model{
		total:     total,
		startTime: time.Now(),
		updates:   updates,
		done:      done,
		cancel:    cancel,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func waitForUpdate(updates <-chan engine.Report) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-updates
		if !ok {
			return nil
		}
		return r
	}
}

func waitForDone(done <-chan Done) tea.Cmd {
	return func() tea.Msg {
		return <-done
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForUpdate(m.updates), waitForDone(m.done), tickCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case TickMsg:
		m.elapsed = time.Since(m.startTime)
		return m, tickCmd()
	case engine.Report:
		m.last = msg
		m.seen = true
		line := fmt.Sprintf("episode %6d  epsilon %.4f  entries %d", msg.Episode, msg.Epsilon, msg.TableSize)
		m.recent = append([]string{line}, m.recent...)
		if len(m.recent) > recentReports {
			m.recent = m.recent[:recentReports]
		}
		return m, waitForUpdate(m.updates)
	case Done:
		m.result = &msg
		m.elapsed = time.Since(m.startTime)
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Training %d episodes\n\n", m.total)

	progress := 0.0
	if m.seen && m.total > 0 {
		progress = float64(m.last.Episode+1) / float64(m.total)
	}
	if m.result != nil && m.result.Err == nil {
		progress = 1
	}
	fmt.Fprintf(&sb, "[%s] %5.1f%%\n", bar(progress, 30), progress*100)
	fmt.Fprintf(&sb, "Duration:   %s\n", m.elapsed.Round(time.Second))
	if m.seen {
		fmt.Fprintf(&sb, "Epsilon:    %.4f\n", m.last.Epsilon)
		fmt.Fprintf(&sb, "Table size: %d\n", m.last.TableSize)
	}

	sb.WriteString("\nRecent reports:\n")
	for _, line := range m.recent {
		sb.WriteString(line + "\n")
	}

	if m.result != nil {
		r := m.result.Metric
		fmt.Fprintf(&sb, "\nDone: %d episodes, %d wins, %d losses, %d draws (win rate %.1f%%)\n",
			r.Episodes, r.Wins, r.Losses, r.Draws, r.WinRate()*100)
		if m.result.Err != nil {
			fmt.Fprintf(&sb, "Stopped early: %v\n", m.result.Err)
		}
		return sb.String()
	}
	sb.WriteString("\nPress q to quit.\n")
	return sb.String()
}

func bar(fraction float64, width int) string {
	fraction = min(max(fraction, 0), 1)
	filled := int(fraction * float64(width))
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}

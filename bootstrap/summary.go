package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/modkit/component"
	"github.com/kbukum/modkit/kernel"
)

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	skipped         []string
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
	}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackSkipped records a root module that was already loaded as another
// module's dependency.
func (s *Summary) TrackSkipped(id string) {
	s.skipped = append(s.skipped, id)
}

// Skipped returns the root modules skipped at startup.
func (s *Summary) Skipped() []string {
	return append([]string(nil), s.skipped...)
}

// Render writes the summary: loaded modules with their bindings, skipped
// roots, components and live health.
func (s *Summary) Render(w io.Writer, k *kernel.Kernel) {
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n\n",
		s.serviceName, s.version, s.startupDuration.Seconds())

	mods := k.Modules()
	fmt.Fprintf(w, "🧩 Modules (%d)\n", len(mods))
	if len(mods) == 0 {
		fmt.Fprintf(w, "   └── No modules loaded\n")
	}
	for i, m := range mods {
		last := i == len(mods)-1
		line := m.ID
		if m.RequiredBy != "" {
			line += " ← " + m.RequiredBy
		}
		fmt.Fprintf(w, "   %s %s (%s)\n", treePrefix(last), line, m.Duration.Round(time.Microsecond))
		for j, b := range m.Bindings {
			fmt.Fprintf(w, "   %s %s 🔗 %s\n", treeIndent(last), treePrefix(j == len(m.Bindings)-1), b)
		}
	}

	if len(s.skipped) > 0 {
		fmt.Fprintf(w, "\n⏭️  Skipped roots (already loaded as dependencies)\n")
		for i, id := range s.skipped {
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i == len(s.skipped)-1), id)
		}
	}

	comps := k.Components().All()
	if len(comps) > 0 {
		fmt.Fprintf(w, "\n📦 Components\n")
		for i, c := range comps {
			fmt.Fprintf(w, "   %s %s\n", treePrefix(i == len(comps)-1), describe(c))
		}
	}

	health := k.Components().HealthAll(context.Background())
	if len(health) > 0 {
		fmt.Fprintf(w, "\n🏥 Health Check\n")
		healthy := 0
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " — " + h.Message
			}
			if h.Status == component.StatusHealthy {
				healthy++
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n",
				treePrefix(i == len(health)-1), healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		}
		if healthy == len(health) {
			fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n", healthy, len(health))
		} else {
			fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(health))
		}
	}

	fmt.Fprintf(w, "\n")
}

func describe(c component.Component) string {
	d, ok := c.(component.Describable)
	if !ok {
		return c.Name()
	}
	desc := d.Describe()
	name := desc.Name
	if name == "" {
		name = c.Name()
	}
	out := name
	if desc.Type != "" {
		out += " [" + desc.Type + "]"
	}
	if desc.Details != "" {
		out += ": " + desc.Details
	}
	return out
}

func treePrefix(last bool) string {
	if last {
		return "└──"
	}
	return "├──"
}

func treeIndent(last bool) string {
	if last {
		return "   "
	}
	return "│  "
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}

// Package output formats verification verdicts, the output catalog and single
// renders for the terminal or machine consumption.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/lcalzada-xor/xsslab/pkg/catalog"
	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/probe"
)

// Formats accepted by every formatter.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Purple gothic palette (256 colors).
var (
	purple      = color.New(38, 5, 129).SprintFunc()
	lightPurple = color.New(38, 5, 141).SprintFunc()
	darkPurple  = color.New(38, 5, 93).SprintFunc()
	red         = color.New(38, 5, 196).SprintFunc()
	orange      = color.New(38, 5, 214).SprintFunc()
	green       = color.New(color.FgGreen).SprintFunc()
)

// ValidFormat reports whether format is one of the supported formats.
func ValidFormat(format string) bool {
	switch format {
	case FormatHuman, FormatJSON, FormatTable:
		return true
	}
	return false
}

func qualityColor(q models.Quality) func(a ...interface{}) string {
	switch q {
	case models.QualityInsecure:
		return red
	case models.QualityQuestionable:
		return orange
	default:
		return green
	}
}

func marshal(v interface{}) string {
	out, err := json.Marshal(v)
	if err != nil {
		// Return error as JSON instead of empty string
		return fmt.Sprintf("{\"error\":\"failed to marshal result: %v\"}", err)
	}
	return string(out)
}

// Format returns one verdict in the selected format.
func Format(v models.Verdict, format string) string {
	switch format {
	case FormatJSON:
		return marshal(v)

	case FormatHuman:
		var sb strings.Builder
		status := green("[OK]")
		if !v.Consistent {
			status = red("[MISMATCH]")
		}
		sb.WriteString(fmt.Sprintf("\n%s %s\n", status, purple(v.Name)))
		sb.WriteString(fmt.Sprintf("    %s    %s\n", darkPurple("Context:"), lightPurple(v.Context.Title())))
		sb.WriteString(fmt.Sprintf("    %s         %s\n", darkPurple("ID:"), lightPurple(v.DescriptorID)))
		sb.WriteString(fmt.Sprintf("    %s    %s\n", darkPurple("Quality:"), qualityColor(v.Quality)(v.Quality.Title())))
		sb.WriteString(fmt.Sprintf("    %s   %s\n", darkPurple("Executed:"), lightPurple(v.Executed)))
		if v.Landing != "" {
			sb.WriteString(fmt.Sprintf("    %s    %s\n", darkPurple("Landing:"), lightPurple(v.Landing)))
		}
		for _, o := range v.Outcomes {
			mark := "-"
			if o.Executed {
				mark = red("!")
			}
			line := fmt.Sprintf("      %s %s", mark, o.Preset)
			if o.Executed {
				line += fmt.Sprintf(" (probe x%d: %s)", o.ProbeCount, o.ProbeMessage)
			}
			if o.Error != "" {
				line += " " + orange("error: "+o.Error)
			}
			sb.WriteString(line + "\n")
		}
		return sb.String()

	default:
		return fmt.Sprintf("%s/%s %s executed=%v consistent=%v", v.Context, v.DescriptorID, v.Quality, v.Executed, v.Consistent)
	}
}

// FormatVerdicts formats a whole verification run.
func FormatVerdicts(verdicts []models.Verdict, format string) string {
	switch format {
	case FormatJSON:
		return marshal(verdicts)

	case FormatTable:
		rows := make([][]string, 0, len(verdicts))
		for _, v := range verdicts {
			executed := 0
			for _, o := range v.Outcomes {
				if o.Executed {
					executed++
				}
			}
			rows = append(rows, []string{
				string(v.Context),
				v.DescriptorID,
				v.Quality.Title(),
				fmt.Sprintf("%d/%d", executed, len(v.Outcomes)),
				string(v.Landing),
				strconv.FormatBool(v.Consistent),
			})
		}
		return table([]string{"Context", "Descriptor", "Quality", "Executed", "Landing", "Consistent"}, rows)

	default:
		var sb strings.Builder
		mismatches := 0
		for _, v := range verdicts {
			if !v.Consistent {
				mismatches++
			}
			sb.WriteString(Format(v, format))
			if format != FormatHuman {
				sb.WriteString("\n")
			}
		}
		if format == FormatHuman {
			summary := green(fmt.Sprintf("\n[+] %d descriptors verified, all consistent\n", len(verdicts)))
			if mismatches > 0 {
				summary = red(fmt.Sprintf("\n[!] %d of %d descriptors contradict their rating\n", mismatches, len(verdicts)))
			}
			sb.WriteString(summary)
		}
		return sb.String()
	}
}

// catalogEntry is the serialized form of a descriptor.
type catalogEntry struct {
	*catalog.Descriptor
	Sink         string   `json:"sink"`
	Technologies []string `json:"technologies"`
}

type catalogGroup struct {
	Context     models.InjectionContext `json:"context"`
	Name        string                  `json:"name"`
	Descriptors []catalogEntry          `json:"descriptors"`
}

// CatalogJSON returns the catalog in its serialized form.
func CatalogJSON(c *catalog.Catalog) interface{} {
	groups := make([]catalogGroup, 0, len(c.Collections()))
	for _, col := range c.Collections() {
		g := catalogGroup{Context: col.Context, Name: col.Name}
		for _, d := range col.Descriptors {
			g.Descriptors = append(g.Descriptors, catalogEntry{
				Descriptor:   d,
				Sink:         sinkName(d),
				Technologies: d.Technologies(),
			})
		}
		groups = append(groups, g)
	}
	return groups
}

func sinkName(d *catalog.Descriptor) string {
	if d.Sink == nil {
		return ""
	}
	return fmt.Sprintf("%s:%s", d.Sink.Kind(), d.Sink.Key())
}

// FormatCatalog lists every descriptor grouped by context.
func FormatCatalog(c *catalog.Catalog, format string) string {
	switch format {
	case FormatJSON:
		return marshal(CatalogJSON(c))

	case FormatTable:
		return FormatDescriptors(c.All(), format)

	default:
		var sb strings.Builder
		for _, col := range c.Collections() {
			sb.WriteString(fmt.Sprintf("\n%s\n", purple(fmt.Sprintf("[%s]", col.Name))))
			for _, d := range col.Descriptors {
				sb.WriteString(fmt.Sprintf("    %-14s %s %s\n",
					qualityColor(d.Quality)(d.Quality.Title()),
					lightPurple(d.ID),
					darkPurple(strings.Join(d.Technologies(), ", "))))
			}
		}
		return sb.String()
	}
}

// FormatDescriptors lists descriptors without grouping (filtered views).
func FormatDescriptors(ds []*catalog.Descriptor, format string) string {
	switch format {
	case FormatJSON:
		entries := make([]catalogEntry, 0, len(ds))
		for _, d := range ds {
			entries = append(entries, catalogEntry{Descriptor: d, Sink: sinkName(d), Technologies: d.Technologies()})
		}
		return marshal(entries)

	case FormatTable:
		rows := make([][]string, 0, len(ds))
		for _, d := range ds {
			rows = append(rows, []string{
				string(d.Context),
				d.ID,
				d.Quality.Title(),
				d.ProcessorKey,
				sinkName(d),
			})
		}
		return table([]string{"Context", "Descriptor", "Quality", "Processor", "Sink"}, rows)

	default:
		var sb strings.Builder
		for _, d := range ds {
			sb.WriteString(fmt.Sprintf("%-14s %s %s\n",
				qualityColor(d.Quality)(d.Quality.Title()),
				lightPurple(string(d.Context)+"/"+d.ID),
				darkPurple(d.Name)))
		}
		return sb.String()
	}
}

// RenderResult is the outcome of rendering one payload from the command line.
type RenderResult struct {
	Context        models.InjectionContext `json:"context"`
	DescriptorID   string                  `json:"descriptor_id"`
	Payload        string                  `json:"payload"`
	LiveSourceCode string                  `json:"live_source_code"`
	Alert          probe.Alert             `json:"alert"`
	Console        []string                `json:"console,omitempty"`
}

// FormatRender formats a single render.
func FormatRender(r RenderResult, format string) string {
	switch format {
	case FormatJSON:
		return marshal(r)

	default:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("%s %s/%s\n", purple("[*] Output:"), r.Context, r.DescriptorID))
		sb.WriteString(fmt.Sprintf("%s %s\n", darkPurple("Payload:"), r.Payload))
		sb.WriteString(fmt.Sprintf("%s\n%s\n", darkPurple("Live source:"), r.LiveSourceCode))
		for _, line := range r.Console {
			sb.WriteString(fmt.Sprintf("%s %s\n", darkPurple("console:"), line))
		}
		if r.Alert.Active() {
			sb.WriteString(red(r.Alert.String()) + "\n")
		} else {
			sb.WriteString(green("No script execution observed") + "\n")
		}
		return sb.String()
	}
}

func table(header []string, rows [][]string) string {
	var buffer bytes.Buffer
	t := tablewriter.NewWriter(&buffer)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetBorder(true)
	t.AppendBulk(rows)
	t.Render()
	return buffer.String()
}

// tir_inspect reads a textual module listing, optionally verifies and
// optimizes it, and reports on its contents.
//
// Usage:
//
//	tir_inspect [flags] <listing.tir>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/tensorlang/tir/ir"
	"github.com/tensorlang/tir/syntax"
	"k8s.io/klog/v2"
)

var (
	flagSummary = flag.Bool("summary", true, "Display a summary table of the module: functions, "+
		"globals, placeholders and their sizes.")
	flagVerify = flag.Bool("verify", false, "Run the structural and shape verifier on the module.")
	flagDCE    = flag.Bool("dce", false, "Run dead-code elimination before reporting. "+
		"Requires the listing to be on the optimizable stage.")
	flagPrint = flag.Bool("print", false, "Print the (possibly rewritten) listing back to stdout.")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		klog.Errorf("Missing listing file to read. See 'tir_inspect -help'.")
		os.Exit(1)
	}
	if len(args) > 1 {
		klog.Errorf("Too many arguments. See 'tir_inspect -help'.")
		os.Exit(1)
	}
	report(args[0])
}

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == 1 {
				s = headerRowStyle
				return
			}
			switch {
			case row%2 == 0:
				s = oddRowStyle
			default:
				s = evenRowStyle
			}
			return
		})
}

func report(listingPath string) {
	src := must.M1(os.ReadFile(listingPath))
	m := must.M1(syntax.Parse(string(src)))

	if *flagVerify {
		if err := ir.Verify(m); err != nil {
			klog.Errorf("Module @%s failed verification: %+v", m.Name(), err)
			os.Exit(1)
		}
		fmt.Printf("Module @%s verifies.\n", m.Name())
	}
	if *flagDCE {
		must.M(m.RunTransform(ir.DeadCodeElimination()))
	}
	if *flagSummary {
		summary(m)
	}
	if *flagPrint {
		fmt.Print(m.String())
	}
}

func summary(m *ir.Module) {
	fmt.Println(titleStyle.Render(fmt.Sprintf("Module @%s (stage %s)", m.Name(), m.Stage())))

	table := newPlainTable(true)
	table.Row("Kind", "Name", "Shape", "Memory")
	var totalBytes int
	for _, v := range m.Variables() {
		table.Row("var", "@"+v.Name(), v.Shape().String(), humanize.Bytes(uint64(v.Shape().Memory())))
		totalBytes += v.Shape().Memory()
	}
	for _, p := range m.Placeholders() {
		kind := "placeholder"
		if p.Recurrent() {
			kind = "recurrent placeholder"
		}
		table.Row(kind, "@"+p.Name(), p.Shape().String(), humanize.Bytes(uint64(p.Shape().Memory())))
	}
	fmt.Println(table.Render())
	fmt.Printf("Total static memory: %s\n\n", humanize.Bytes(uint64(totalBytes)))

	funcs := newPlainTable(true)
	funcs.Row("Function", "Arguments", "Blocks", "Instructions")
	for _, f := range m.Functions() {
		numInstr := 0
		for _, b := range f.Blocks() {
			numInstr += len(b.Instructions())
		}
		funcs.Row("@"+f.Name(),
			humanize.Comma(int64(len(f.Arguments()))),
			humanize.Comma(int64(len(f.Blocks()))),
			humanize.Comma(int64(numInstr)))
	}
	fmt.Println(funcs.Render())
}

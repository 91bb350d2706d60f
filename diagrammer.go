package mkconv

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"git.fractalqb.de/fractalqb/mkconv/mkore"
)

// Diagrammer writes the task graph of a build in the Graphviz dot language.
// Projects become clusters, configurations that publish artifacts are drawn
// as notes connected to their producing tasks.
type Diagrammer struct {
	RankDir string
}

func (dia *Diagrammer) WriteDot(w io.Writer, b *mkore.Build) (err error) {
	defer func() {
		if p := recover(); p != nil {
			switch p := p.(type) {
			case error:
				err = p
			case string:
				err = errors.New(p)
			default:
				err = fmt.Errorf("panic: %+v", p)
			}
		}
	}()

	fmt.Fprintf(w, "digraph \"%s\" {\n", escDotID(b.Root().Name()))
	if dia.RankDir != "" {
		fmt.Fprintf(w, "\trankdir=\"%s\"\n", escDotID(dia.RankDir))
	}
	for i, prj := range b.Projects() {
		dia.project(w, i, prj)
	}
	for _, prj := range b.Projects() {
		for _, t := range prj.Tasks() {
			dia.edges(w, t)
		}
		for _, c := range prj.Configurations() {
			dia.outgoing(w, c)
		}
	}
	fmt.Fprintln(w, "}")
	return nil
}

func (dia *Diagrammer) project(w io.Writer, i int, prj *mkore.Project) {
	fmt.Fprintf(w, "\tsubgraph \"cluster_%d\" {\n\t\tlabel=\"%s\";\n", i, escDotID(prj.Path()))
	for _, t := range prj.Tasks() {
		style := "rounded"
		if t.IsImplicit() {
			style = "dashed"
		}
		fmt.Fprintf(w, "\t\t\"%s\" [shape=box,style=\"%s\",label=\"%s\"];\n",
			escDotID(t.Path()),
			style,
			escDotID(t.Name()),
		)
	}
	fmt.Fprintln(w, "\t}")
}

func (dia *Diagrammer) edges(w io.Writer, t *mkore.Task) {
	deps, err := t.Dependencies()
	if err != nil {
		panic(err)
	}
	for _, d := range deps {
		fmt.Fprintf(w, "\t\"%s\" -> \"%s\";\n", escDotID(t.Path()), escDotID(d.Path()))
	}
}

func (dia *Diagrammer) outgoing(w io.Writer, c *mkore.Configuration) {
	if !c.CanBeConsumed || len(c.Outgoing()) == 0 {
		return
	}
	node := c.Project().Path() + "/" + c.Name()
	fmt.Fprintf(w, "\t\"%s\" [shape=note,label=\"%s\"];\n", escDotID(node), escDotID(c.Name()))
	for _, a := range c.Outgoing() {
		builders, err := a.BuildDependencies()
		if err != nil {
			panic(err)
		}
		for _, t := range builders {
			fmt.Fprintf(w, "\t\"%s\" -> \"%s\" [style=dashed];\n",
				escDotID(node),
				escDotID(t.Path()),
			)
		}
	}
}

func escDotID(id string) string {
	return strings.ReplaceAll(id, "\"", "\\\"")
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/go-faker/faker/v4"
	"github.com/nikandfor/hacked/low"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"nikand.dev/go/bptree"
)

var (
	sepColor  = color.New(color.FgBlue, color.Bold)
	leafColor = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
)

func main() {
	app := &cli.Command{
		Name:   "bptree",
		Before: before,
		Flags: []*cli.Flag{
			cli.NewFlag("verbosity,v", "", "tlog verbosity topics"),
			cli.NewFlag("detailed,vv", false, "detailed log"),
			cli.HelpFlag,
			cli.FlagfileFlag,
		},
		Commands: []*cli.Command{{
			Name:        "fill",
			Description: "fill a tree with generated data and dump its structure",
			Action:      fill,
			Flags: []*cli.Flag{
				cli.NewFlag("order,o", 6, "tree order"),
				cli.NewFlag("keys,n", 40, "number of generated pairs"),
			},
		}, {
			Name:        "repl",
			Description: "interactive session on a fresh tree",
			Action:      repl,
			Flags: []*cli.Flag{
				cli.NewFlag("order,o", 4, "tree order"),
			},
		}},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	if c.Bool("vv") {
		tlog.DefaultLogger = tlog.New(tlog.NewConsoleWriter(tlog.Stderr, tlog.LdetFlags))
	}

	tlog.SetVerbosity(c.String("v"))

	return nil
}

func fill(c *cli.Command) (err error) {
	tr, err := bptree.NewOrdered[string, string](c.Int("order"))
	if err != nil {
		return errors.Wrap(err, "new tree")
	}

	for i := 0; i < c.Int("keys"); i++ {
		tr.Put(faker.Word(), faker.Word())
	}

	err = tr.Valid()
	if err != nil {
		return errors.Wrap(err, "validate")
	}

	// faker repeats words, so Size may be below the requested count
	fmt.Printf("filled %d unique keys  order %d  depth %d\n", tr.Size(), tr.Order(), tr.Depth())

	dump(os.Stdout, tr)

	return nil
}

func repl(c *cli.Command) (err error) {
	tr, err := bptree.NewOrdered[string, string](c.Int("order"))
	if err != nil {
		return errors.Wrap(err, "new tree")
	}

	fmt.Printf(`commands:
  set <key> <value>
  get <key>
  dump
  exit
`)

	sc := bufio.NewScanner(os.Stdin)

	for fmt.Print("> "); sc.Scan(); fmt.Print("> ") {
		f := strings.Fields(sc.Text())
		if len(f) == 0 {
			continue
		}

		switch strings.ToLower(f[0]) {
		case "set":
			if len(f) != 3 {
				errColor.Println("usage: set <key> <value>")
				break
			}

			tr.Put(f[1], f[2])

			dump(os.Stdout, tr)
		case "get":
			if len(f) != 2 {
				errColor.Println("usage: get <key>")
				break
			}

			v, ok := tr.Get(f[1])
			if !ok {
				errColor.Printf("%v: not found\n", f[1])
				break
			}

			leafColor.Println(v)
		case "dump":
			dump(os.Stdout, tr)
		case "exit":
			return nil
		default:
			errColor.Printf("unknown command %q\n", f[0])
		}
	}

	return sc.Err()
}

func dump(w io.Writer, tr *bptree.Tree[string, string]) {
	var b low.Buf

	tr.DumpTo(&b)

	for _, l := range strings.Split(string(b), "\n") {
		switch {
		case l == "":
		case strings.Contains(l, "->"):
			leafColor.Fprintln(w, l)
		case strings.Contains(l, "<"):
			sepColor.Fprintln(w, l)
		default:
			fmt.Fprintln(w, l)
		}
	}
}

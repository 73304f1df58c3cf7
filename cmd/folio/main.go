package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ancientlore/folio/build"
	"github.com/ancientlore/folio/config"
	"github.com/facebookgo/flagenv"
	"github.com/golang/groupcache"
)

const usage = `folio builds a static blog and portfolio site from Markdown.

Usage:

	folio <command> [flags]

Commands:

	build   write the site to the output folder
	serve   build, then serve the site with live reload
	routes  print the pages a build would write, as JSON

Every flag can also be set with an environment variable, such as FOLIO_ROOT
for -root. Use "folio <command> -h" for the flags of a command.
`

// common holds the flags shared by all commands.
type common struct {
	root   *string
	out    *string
	future *bool
	drafts *bool
}

func commonFlags(fs *flag.FlagSet) *common {
	return &common{
		root:   fs.String("root", ".", "Root of the site folder."),
		out:    fs.String("out", "", "Output folder; defaults to the output setting of folio.toml."),
		future: fs.Bool("future", false, "Include items dated in the future."),
		drafts: fs.Bool("drafts", false, "List unpublished items."),
	}
}

// load reads the site configuration and works out the output folder.
func (c *common) load() (*config.Config, string, error) {
	cfg, err := config.Load(os.DirFS(*c.root))
	if err != nil {
		return nil, "", err
	}
	out := *c.out
	if out == "" {
		out = filepath.Join(*c.root, filepath.FromSlash(cfg.Output))
	}
	return cfg, out, nil
}

func parse(fs *flag.FlagSet, args []string) {
	// ExitOnError is set, so errors never get here.
	_ = fs.Parse(args)
	if err := flagenv.ParseSet("FOLIO_", fs); err != nil {
		log.Printf("Cannot read environment: %s", err)
		os.Exit(2)
	}
}

// main is where it all begins. 😀
func main() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
	log.SetPrefix("folio: ")

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Setup groupcache with no peers
	groupcache.RegisterPeerPicker(func() groupcache.PeerPicker { return groupcache.NoPeers{} })

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "build":
		runBuild(args)
	case "serve":
		runServe(args)
	case "routes":
		runRoutes(args)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(os.Stdout, usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	c := commonFlags(fs)
	concurrency := fs.Int("concurrency", 0, "Pages rendered at once; 0 means one per CPU.")
	parse(fs, args)

	cfg, out, err := c.load()
	if err != nil {
		log.Printf("Cannot load configuration: %s", err)
		os.Exit(3)
	}
	r, err := build.Run(context.Background(), os.DirFS(*c.root), cfg, build.Options{
		Output:      out,
		Future:      *c.future,
		Drafts:      *c.drafts,
		Concurrency: *concurrency,
	})
	if err != nil {
		log.Printf("Build failed: %s", err)
		os.Exit(4)
	}
	log.Printf("Wrote %d pages from %d items to %q in %s", len(r.Pages), r.Items, out, r.Duration.Round(time.Millisecond))
}

func runRoutes(args []string) {
	fs := flag.NewFlagSet("routes", flag.ExitOnError)
	c := commonFlags(fs)
	parse(fs, args)

	cfg, _, err := c.load()
	if err != nil {
		log.Printf("Cannot load configuration: %s", err)
		os.Exit(3)
	}
	pages, _, err := build.New(os.DirFS(*c.root), cfg, nil).Pages(build.Options{Future: *c.future})
	if err != nil {
		log.Printf("Cannot derive pages: %s", err)
		os.Exit(4)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err = enc.Encode(pages); err != nil {
		log.Printf("Cannot write pages: %s", err)
		os.Exit(5)
	}
}

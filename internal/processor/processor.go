// Package processor wires the stripping engine to files and streams: it
// decides which pipeline a file takes (Jupyter or Zeppelin), reads the
// document, strips it, and writes the result back in place, to stdout, or
// nowhere at all for a dry run.
package processor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mattn/go-isatty"

	"github.com/arobrien/nbstripout/internal/logger"
	"github.com/arobrien/nbstripout/pkg/notebook"
	"github.com/arobrien/nbstripout/pkg/strip"
)

// Mode selects the document family when the file extension does not.
const (
	ModeJupyter  = "jupyter"
	ModeZeppelin = "zeppelin"
)

// ErrInteractiveStdin is returned when asked to read a notebook from a
// terminal instead of a pipe.
var ErrInteractiveStdin = errors.New("no files supplied and stdin is a terminal")

// Config configures a Processor.
type Config struct {
	// Mode chooses the pipeline for files without a telling extension.
	Mode string `validate:"required,oneof=jupyter zeppelin"`

	// Force processes files regardless of extension.
	Force bool

	// DryRun reports which files would have been stripped without
	// touching them.
	DryRun bool

	// Textconv writes stripped files to Stdout instead of rewriting them,
	// the behavior git diff textconv expects.
	Textconv bool

	// Stdout receives textconv output. Defaults to os.Stdout.
	Stdout io.Writer `validate:"-"`

	// Strip holds the stripping engine options.
	Strip strip.Options `validate:"-"`
}

// Processor runs notebooks through the stripping engine.
type Processor struct {
	cfg Config
}

// New validates cfg and constructs a Processor. An empty Mode defaults to
// jupyter.
func New(cfg Config) (*Processor, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeJupyter
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid processor config: %w", err)
	}
	return &Processor{cfg: cfg}, nil
}

// ShouldProcess reports whether a file is eligible: notebook extensions
// always, anything else only under Force.
func (p *Processor) ShouldProcess(path string) bool {
	return p.cfg.Force || strings.HasSuffix(path, ".ipynb") || strings.HasSuffix(path, ".zpln")
}

// ProcessFile strips one notebook file in place (or to stdout under
// textconv). Files with foreign extensions are skipped silently unless
// Force is set.
func (p *Processor) ProcessFile(path string) error {
	if !p.ShouldProcess(path) {
		logger.Debug("skipping file without notebook extension", "path", path)
		return nil
	}
	zeppelin := p.cfg.Mode == ModeZeppelin || strings.HasSuffix(path, ".zpln")

	f, err := os.Open(path) //#nosec G304 -- CLI tool reads user-specified files
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("could not strip %q: file not found", path)
		}
		return fmt.Errorf("could not strip %q: %w", path, err)
	}
	doc, err := notebook.Read(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("%q is not a valid notebook: %w", path, err)
	}

	doc, err = p.stripDocument(doc, zeppelin)
	if err != nil {
		return fmt.Errorf("could not strip %q: %w", path, err)
	}

	if p.cfg.DryRun {
		logger.Info("dry run: would have stripped", "path", path)
		return nil
	}

	if p.cfg.Textconv {
		return p.writeDocument(p.cfg.Stdout, doc, zeppelin)
	}

	out, err := os.Create(path) //#nosec G304 -- rewriting the input file is the whole point
	if err != nil {
		return fmt.Errorf("could not rewrite %q: %w", path, err)
	}
	if err := p.writeDocument(out, doc, zeppelin); err != nil {
		_ = out.Close()
		return fmt.Errorf("could not rewrite %q: %w", path, err)
	}
	return out.Close()
}

// ProcessStream strips a notebook from in to out, the git clean filter
// path. Reading a notebook from an interactive terminal is refused.
func (p *Processor) ProcessStream(in io.Reader, out io.Writer) error {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return ErrInteractiveStdin
	}
	zeppelin := p.cfg.Mode == ModeZeppelin

	doc, err := notebook.Read(in)
	if err != nil {
		return fmt.Errorf("no valid notebook detected on stdin: %w", err)
	}

	doc, err = p.stripDocument(doc, zeppelin)
	if err != nil {
		return err
	}

	if p.cfg.DryRun {
		logger.Info("dry run: would have stripped input from stdin")
		return nil
	}
	return p.writeDocument(out, doc, zeppelin)
}

func (p *Processor) stripDocument(doc notebook.Document, zeppelin bool) (notebook.Document, error) {
	if zeppelin {
		return strip.StripZeppelin(doc), nil
	}
	return strip.Strip(doc, p.cfg.Strip)
}

func (p *Processor) writeDocument(w io.Writer, doc notebook.Document, zeppelin bool) error {
	if zeppelin {
		return notebook.WriteZeppelin(w, doc)
	}
	return notebook.Write(w, doc)
}

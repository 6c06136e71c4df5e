package nexus

import (
	"context"
	"fmt"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/joklawitter/algo-phylo/newick"
	"github.com/joklawitter/algo-phylo/parseerr"
	"github.com/joklawitter/algo-phylo/taxon"
)

var log = commonlog.GetLogger("algo-phylo.nexus")

// Options control how the trees of a document are read. The zero value
// reads trees one after the other and stops at the first error.
type Options struct {
	// Workers is the number of goroutines that parse TREE statements once
	// the taxon dictionary is complete. Values below 2 parse sequentially.
	// Trees whose leaves define the dictionary are always read
	// sequentially.
	Workers int

	// Lenient keeps going after a tree fails to parse. The failed tree is
	// left out (its NamedTree has a nil Tree) and its error is recorded in
	// Sample.Errors. Errors outside of TREE statements are still fatal.
	Lenient bool
}

// NamedTree is a tree of a TREES block together with its name.
type NamedTree struct {
	Name    string
	Default bool
	Tree    *newick.Tree
}

// TreeError is the failure of a single TREE statement. Index counts trees
// across all TREES blocks of the document, starting at 0.
type TreeError struct {
	Index int
	Name  string
	Err   error
}

func (e *TreeError) Error() string {
	return fmt.Sprintf("Tree %d ('%s'): %s", e.Index, e.Name, e.Err)
}

func (e *TreeError) Unwrap() error {
	return e.Err
}

// Sample is the content of a NEXUS document: one taxon dictionary shared by
// all trees, the trees in file order, and every block of the document.
type Sample struct {
	Taxa   *taxon.Dictionary
	Trees  []NamedTree
	Errors []*TreeError
	Blocks []Block
}

// Parse reads a NEXUS document with default Options.
func Parse(text string) (*Sample, error) {
	return ParseOptions(context.Background(), text, Options{})
}

// ParseOptions reads a NEXUS document. Blocks other than TAXA and TREES
// are kept in Sample.Blocks but not interpreted.
//
// The taxon dictionary comes from the TAXA block if one precedes the TREES
// block, otherwise from the first TRANSLATE command, otherwise from leaf
// labels in the order they are first seen. In every case it is frozen
// before Parse returns.
func ParseOptions(ctx context.Context, text string, opts Options) (*Sample, error) {
	blocks, err := Scan(text)
	if err != nil {
		return nil, err
	}

	r := &reader{opts: opts, sample: &Sample{Blocks: blocks}}
	for _, b := range blocks {
		switch {
		case b.Is("TAXA"):
			if r.taxa != nil {
				what := "a second TAXA block"
				if !r.hasTaxaBlock {
					what = "a TAXA block after the TREES block"
				}
				return nil, parseerr.New(parseerr.DuplicateBlock, b.Pos,
					"Found %s.", what)
			}
			if r.taxa, err = ParseTaxa(b); err != nil {
				return nil, err
			}
			r.hasTaxaBlock = true
		case b.Is("TREES"):
			if err := r.readTrees(ctx, b); err != nil {
				return nil, err
			}
		default:
			log.Debugf("Skipping %s block at %s.", b.Name, b.Pos)
		}
	}

	if r.taxa == nil {
		r.taxa = taxon.NewDictionary()
	}
	r.taxa.Freeze()
	r.sample.Taxa = r.taxa
	log.Infof("Read %d trees over %d taxa (%d failed).",
		len(r.sample.Trees)-len(r.sample.Errors), r.taxa.Len(),
		len(r.sample.Errors))
	return r.sample, nil
}

// reader carries the state shared by the blocks of one document.
type reader struct {
	opts         Options
	sample       *Sample
	taxa         *taxon.Dictionary
	hasTaxaBlock bool
}

func (r *reader) readTrees(ctx context.Context, b Block) error {
	tb, err := splitTrees(b)
	if err != nil {
		return err
	}

	if r.taxa == nil {
		r.taxa = taxon.NewDictionary()
	}
	var resolve newick.Resolver
	var collector *newick.Collector
	switch {
	case tb.translate != nil:
		missing := parseerr.UnknownTaxonName
		if !r.hasTaxaBlock {
			missing = parseerr.MissingTaxaBlock
		}
		tr, err := parseTranslate(tb.translate.Args, tb.translate.ArgsPos,
			r.taxa, missing)
		if err != nil {
			return err
		}
		resolve = tr.Resolve
	case r.taxa.Frozen():
		resolve = lookupResolver(r.taxa, r.hasTaxaBlock)
	default:
		collector = newick.NewCollector(r.taxa)
		resolve = collector.Resolve
	}

	parser := newick.NewParser(r.taxa, resolve)
	offset := len(r.sample.Trees)
	named := make([]NamedTree, len(tb.stmts))
	for i, stmt := range tb.stmts {
		named[i] = NamedTree{Name: stmt.Name, Default: stmt.Default}
	}

	var errs []*TreeError
	if collector != nil || r.opts.Workers < 2 {
		errs, err = r.parseSequential(ctx, parser, collector, tb.stmts,
			named, offset)
	} else {
		errs, err = r.parseParallel(ctx, parser, tb.stmts, named, offset)
	}
	if err != nil {
		return err
	}

	r.taxa.Freeze()
	r.sample.Trees = append(r.sample.Trees, named...)
	r.sample.Errors = append(r.sample.Errors, errs...)
	return nil
}

// fail decides what happens to a failed tree: in fail-fast mode it becomes
// the error of the whole parse, in lenient mode it is logged and recorded.
func (r *reader) fail(errs []*TreeError, terr *TreeError) ([]*TreeError, error) {
	if !r.opts.Lenient {
		return nil, terr
	}
	log.Warningf("Skipping tree: %s", terr)
	return append(errs, terr), nil
}

func (r *reader) parseSequential(ctx context.Context, parser *newick.Parser,
	collector *newick.Collector, stmts []treeStmt, named []NamedTree,
	offset int) ([]*TreeError, error) {

	var errs []*TreeError
	for i, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tree, err := parser.ParseAt(stmt.Newick, stmt.NewickPos)
		if err == nil && collector != nil {
			err = collector.Commit()
		}
		if err != nil {
			if collector != nil {
				collector.Discard()
			}
			terr := &TreeError{Index: offset + i, Name: stmt.Name, Err: err}
			if errs, err = r.fail(errs, terr); err != nil {
				return nil, err
			}
			continue
		}
		named[i].Tree = tree
	}
	return errs, nil
}

// parseParallel parses independent TREE statements on up to
// Options.Workers goroutines. The dictionary and the resolver are read-only
// at this point. Results are stored by index, so file order is kept.
// Statements are started in file order and no new ones are started after a
// failure, so in fail-fast mode the earliest failed tree is the one
// reported.
func (r *reader) parseParallel(ctx context.Context, parser *newick.Parser,
	stmts []treeStmt, named []NamedTree, offset int) ([]*TreeError, error) {

	failed := make([]*TreeError, len(stmts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i := range stmts {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			stmt := stmts[i]
			tree, err := parser.ParseAt(stmt.Newick, stmt.NewickPos)
			if err != nil {
				failed[i] = &TreeError{Index: offset + i, Name: stmt.Name, Err: err}
				if !r.opts.Lenient {
					return failed[i]
				}
				return nil
			}
			named[i].Tree = tree
			return nil
		})
	}
	werr := g.Wait()

	var errs []*TreeError
	for _, terr := range failed {
		if terr == nil {
			continue
		}
		var err error
		if errs, err = r.fail(errs, terr); err != nil {
			return nil, err
		}
	}
	if werr != nil {
		return nil, werr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return errs, nil
}

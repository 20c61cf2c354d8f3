package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"locedit/internal/config"
	"locedit/internal/session"
	"locedit/internal/textutil"
)

// runShell handles the `shell` command: a line-oriented loop over one
// editing session. Free text lives in the tail of each line, so only
// the command word and at most one ID argument are ever split off.
func runShell(inputDir, outputDir string) error {
	if err := ensureDistinct(inputDir, outputDir); err != nil {
		return err
	}

	ctx, cancel := setupContext()
	defer cancel()

	cfg := config.Load()
	st := loadState(cfg)

	sess, sum, err := session.Load(ctx, inputDir, cfg.UndoLimit)
	if err != nil {
		return fmt.Errorf("load tables: %w", err)
	}
	fmt.Printf("Loaded %d files, %d rows. Type 'help' for commands.\n", sum.FilesLoaded, sum.Rows)
	if st.SearchTerm != "" {
		fmt.Printf("Last search term: %q\n", st.SearchTerm)
	}

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "help":
			printShellHelp()
		case "list":
			shellList(sess)
		case "show":
			shellShow(sess, rest)
		case "set":
			shellSet(sess, rest)
		case "find":
			if rest == "" {
				fmt.Println("usage: find <term>")
				continue
			}
			st.SearchTerm = rest
			if id, ok := sess.Find(rest); ok {
				shellShow(sess, id)
			} else {
				fmt.Println("no matches")
			}
		case "next":
			if id, ok := sess.Next(); ok {
				shellShow(sess, id)
			} else {
				fmt.Println("no active search")
			}
		case "prev":
			if id, ok := sess.Prev(); ok {
				shellShow(sess, id)
			} else {
				fmt.Println("no active search")
			}
		case "replace":
			st.ReplaceTerm = rest
			if id, ok := sess.ReplaceCurrent(rest); ok {
				shellShow(sess, id)
			} else {
				fmt.Println("nothing replaced")
			}
		case "replace-all":
			if sess.SearchTerm() == "" {
				fmt.Println("run 'find <term>' first")
				continue
			}
			st.ReplaceTerm = rest
			n := sess.ReplaceAll(sess.SearchTerm(), rest)
			fmt.Printf("%d rows changed\n", n)
		case "undo":
			if res, ok := sess.Undo(); ok {
				fmt.Printf("undone (%d rows)\n", res.Applied)
			} else {
				fmt.Println("nothing to undo")
			}
		case "redo":
			if res, ok := sess.Redo(); ok {
				fmt.Printf("redone (%d rows)\n", res.Applied)
			} else {
				fmt.Println("nothing to redo")
			}
		case "diff":
			diff, err := sess.PendingDiff()
			if err != nil {
				fmt.Println("diff failed:", err)
			} else if diff == "" {
				fmt.Println("no pending changes")
			} else {
				fmt.Print(diff)
			}
		case "export":
			shellExport(sess, rest)
		case "import":
			shellImport(sess, rest)
		case "save":
			sum, err := sess.Save(ctx, outputDir)
			if err != nil {
				fmt.Println("save failed:", err)
				continue
			}
			fmt.Printf("saved %d files to %s\n", sum.FilesSaved, outputDir)
			for _, m := range sum.Mismatches {
				fmt.Println("not saved:", m)
			}
		case "quit", "exit":
			if sess.Dirty() {
				fmt.Println("unsaved changes discarded")
			}
			st.InputDir, st.OutputDir = inputDir, outputDir
			saveState(cfg, st)
			return nil
		default:
			fmt.Printf("unknown command %q, type 'help'\n", cmd)
		}
	}

	st.InputDir, st.OutputDir = inputDir, outputDir
	saveState(cfg, st)
	return sc.Err()
}

func printShellHelp() {
	fmt.Print(`commands:
  list                 show all rows
  show <id>            show one row in full
  set <id> <text>      set a row's text
  find <term>          search rows (case-insensitive)
  next / prev          move the search cursor
  replace <text>       replace the term in the current row
  replace-all <text>   replace the term in every row
  undo / redo          step through the edit history
  diff                 show pending changes against the loaded files
  export <file.tsv>    write all rows to a transfer file
  import <file.tsv>    apply a transfer file
  save                 write edited tables to the output folder
  quit                 leave (unsaved changes are discarded)
`)
}

func shellList(sess *session.Session) {
	for _, id := range sess.RowIDs() {
		v, _ := sess.Row(id)
		mark := " "
		if v.Dirty {
			mark = "*"
		}
		fmt.Printf("%s %-14s %-24s %5d  %s\n",
			mark, id, filepath.Base(v.File), v.Line, textutil.Truncate(v.Display, 60))
	}
}

func shellShow(sess *session.Session, id string) {
	v, ok := sess.Row(id)
	if !ok {
		fmt.Printf("unknown row %q\n", id)
		return
	}
	fmt.Printf("%s  %s:%d\n", v.ID, filepath.Base(v.File), v.Line)
	if v.Prefix != "" {
		fmt.Printf("  marker: %s\n", v.Prefix)
	}
	fmt.Printf("  text:   %s\n", v.Display)
}

func shellSet(sess *session.Session, rest string) {
	id, text, ok := strings.Cut(rest, " ")
	if !ok || id == "" {
		fmt.Println("usage: set <id> <text>")
		return
	}
	if err := sess.Edit(id, text); err != nil {
		fmt.Println(err)
		return
	}
	shellShow(sess, id)
}

func shellExport(sess *session.Session, path string) {
	if path == "" {
		fmt.Println("usage: export <file.tsv>")
		return
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Println("export failed:", err)
		return
	}
	defer f.Close()
	if err := sess.ExportTSV(f, appVersion); err != nil {
		fmt.Println("export failed:", err)
		return
	}
	fmt.Println("exported to", path)
}

func shellImport(sess *session.Session, path string) {
	if path == "" {
		fmt.Println("usage: import <file.tsv>")
		return
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Println("import failed:", err)
		return
	}
	defer f.Close()
	report, err := sess.ImportTSV(f, appVersion)
	if err != nil {
		fmt.Println("import failed:", err)
		return
	}
	fmt.Printf("%d rows updated, %d skipped\n", report.Updated, len(report.Skipped))
	for _, s := range report.Skipped {
		fmt.Println("  skipped:", s)
	}
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/abe-nagisa/unextract"
	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

type options struct {
	Path        string `short:"p" long:"path" description:"path to the archive file; - reads the path from stdin"`
	Mode        uint8  `short:"m" long:"mode" default:"3" description:"1: files next to the archive, 2: files under the directory named after the archive, 3: both"`
	Interactive bool   `short:"i" long:"interactive" description:"ask for confirmation before removing"`
	Encoding    string `short:"e" long:"encoding" default:"utf8" choice:"utf8" choice:"cp932" description:"encoding of entry names whose general purpose bit 11 is unset"`
	Legacy      bool   `long:"legacy-fallback" description:"with utf8 encoding, decode invalid names as cp932 instead of failing"`
	Recursive   bool   `short:"r" long:"recursive" description:"also remove directories left empty by the removal"`
	List        bool   `short:"l" long:"list" description:"print what would be removed without removing anything"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Usage = "[OPTIONS]"

	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	if err := run(opts, parser); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options, parser *flags.Parser) error {
	path, err := archivePath(opts, parser)
	if err != nil {
		return err
	}

	dec, err := unextract.NewNameDecoder(opts.Encoding, func(d *unextract.NameDecoder) {
		d.LegacyFallback = opts.Legacy
	})
	if err != nil {
		return err
	}

	switch _, ext := unextract.StemAndExt(path); ext {
	case ".zip":
	case ".rar":
		return fmt.Errorf("rar archives are not supported yet")
	default:
		return fmt.Errorf(`unsupported file type: "%s"`, path)
	}

	entries, err := unextract.OpenDirectory(path, dec)
	if err != nil {
		return err
	}

	paths, err := unextract.Plan(entries, path, unextract.Mode(opts.Mode))
	if err != nil {
		return err
	}

	if len(paths) == 0 {
		fmt.Println("Archive contents are not found.")
		fmt.Println("Skip removing.")
		return nil
	}

	fmt.Println("The following files will be removed:")
	var total uint64
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil {
			total += uint64(fi.Size())
		}
		fmt.Printf("\t%s\n", p)
	}
	fmt.Printf("%d files, %s total.\n", len(paths), humanize.IBytes(total))

	if opts.List {
		fmt.Println("Skip removing.")
		return nil
	}

	if !confirm(opts.Interactive) {
		fmt.Println("Abort.")
		return nil
	}

	bar := progressbar.Default(int64(len(paths)), "removing")
	for _, p := range paths {
		// removal is best effort; a file that vanished since planning should not stop the rest.
		if err = unextract.Remove(p); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	if opts.Recursive {
		fmt.Println("Remove empty directories recursively.")
		removeEmptyAncestors(paths, filepath.Dir(path))
	}

	return nil
}

// archivePath resolves the archive path from the --path flag, falling back to stdin when the flag is "-" or
// when input is piped in. Without either, help is printed and the program exits.
func archivePath(opts options, parser *flags.Parser) (string, error) {
	if opts.Path != "" && opts.Path != "-" {
		return opts.Path, nil
	}

	if opts.Path != "-" && term.IsTerminal(int(os.Stdin.Fd())) {
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read archive path from stdin error: %w", err)
	}

	path := strings.TrimSpace(string(data))
	if path == "" {
		return "", fmt.Errorf("empty archive path on stdin")
	}

	return path, nil
}

func confirm(interactive bool) bool {
	fmt.Print("Do you want to continue? [Y/n] ")

	answer := "y"
	if interactive {
		answer = ""
		if sc := bufio.NewScanner(os.Stdin); sc.Scan() {
			answer = strings.TrimSpace(sc.Text())
		}
	} else {
		fmt.Println(answer)
	}

	return strings.EqualFold(answer, "y")
}

func removeEmptyAncestors(paths []string, stop string) {
	for _, dir := range unextract.EmptyAncestors(paths, stop) {
		switch empty, err := unextract.IsEmptyDir(dir); {
		case err != nil:
			fmt.Fprintln(os.Stderr, err)
		case !empty:
			fmt.Printf("\t%s is not empty. Skip removing.\n", dir)
		default:
			if err := unextract.Remove(dir); err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Printf("\tRemoved: %s.\n", dir)
		}
	}
}

package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	rmdupes "github.com/mattkeenan/rmdupes/pkg"
)

const version = "1.0.0"

// arguments holds the parsed command line
type arguments struct {
	printMode     bool
	deleteMode    bool
	dryRun        bool
	skipHardlinks bool
	hashAlg       string
	workers       int
	verbose       int
	debug         string
	configPath    string
	outputPath    string
	directory     string
}

func main() {
	if len(os.Args) < 2 {
		showHelp()
		os.Exit(1)
	}

	// Handle help and version early
	if os.Args[1] == "--help" || os.Args[1] == "-h" || os.Args[1] == "help" {
		showHelp()
		return
	}

	if os.Args[1] == "--version" {
		fmt.Printf("rmdupes %s\n", version)
		return
	}

	args, err := parseArguments(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "rmdupes: %v\n", err)
		showUsage()
		os.Exit(1)
	}

	if err := run(args); err != nil {
		fmt.Fprintf(os.Stderr, "rmdupes: %v\n", err)
		os.Exit(1)
	}
}

func run(args *arguments) error {
	// The directory defaults to the current working directory and must be
	// a real directory, not a symlink to one
	directory := args.directory
	if directory == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to determine working directory: %w", err)
		}
		directory = cwd
	}
	info, err := os.Lstat(directory)
	if err != nil {
		return fmt.Errorf("path must specify a directory: %s", directory)
	}
	if info.Mode()&fs.ModeSymlink != 0 || !info.IsDir() {
		return fmt.Errorf("path must specify a directory: %s", directory)
	}

	cfg, err := rmdupes.LoadConfig(args.configPath)
	if err != nil {
		return err
	}

	// Command line options override the config file
	if args.hashAlg != "" {
		if _, ok := rmdupes.HashTypeFromName(args.hashAlg); !ok {
			return fmt.Errorf("unsupported hash algorithm: %s", args.hashAlg)
		}
		cfg.Set("filehash", "default", args.hashAlg)
	}
	if args.workers > 0 {
		cfg.Set("performance", "hash_workers", strconv.Itoa(args.workers))
	}
	if args.skipHardlinks {
		cfg.Set("scan", "skip_hardlinks", "true")
	}

	if args.verbose >= 0 {
		rmdupes.SetVerboseLevel(args.verbose)
	} else {
		rmdupes.SetVerboseLevel(cfg.GetVerboseConfig().Level)
	}
	if args.debug != "" {
		rmdupes.SetDebugFlags(args.debug)
	} else {
		rmdupes.SetDebugFlags(cfg.GetVerboseConfig().Debug)
	}
	rmdupes.SetColorMode(cfg.GetOutputConfig().Color)

	shutdownChan := setupSignalHandler()

	registry := rmdupes.NewContentRegistry(directory, cfg)
	registry.SetNotifier(rmdupes.NewNotifier(os.Stderr))

	if err := registry.Scan(shutdownChan); err != nil {
		return err
	}
	if err := registry.PruneSingles(); err != nil {
		return err
	}
	if err := registry.Reorder(); err != nil {
		return err
	}

	if args.printMode {
		if args.outputPath != "" {
			return registry.WriteReportFile(args.outputPath)
		}
		return registry.Render(os.Stdout)
	}

	var deleter rmdupes.Deleter = rmdupes.OSDeleter{}
	if args.dryRun {
		deleter = rmdupes.DryRunDeleter{}
	}
	return registry.RemoveDuplicates(deleter)
}

// parseArguments parses the command line in any order. -p and -d are
// mutually exclusive and exactly one is required; at most one non-flag
// argument names the directory; repeated arguments are rejected.
func parseArguments(argv []string) (*arguments, error) {
	args := &arguments{verbose: -1}
	seen := make(map[string]bool)

	takesValue := func(flag string, i *int) (string, error) {
		if *i+1 >= len(argv) {
			return "", fmt.Errorf("%s requires an argument", flag)
		}
		*i++
		return argv[*i], nil
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		if len(arg) > 0 && arg[0] == '-' {
			if seen[arg] {
				return nil, fmt.Errorf("duplicate argument: %s", arg)
			}
			seen[arg] = true
		}

		switch arg {
		case "-p", "--print":
			args.printMode = true
		case "-d", "--delete":
			args.deleteMode = true
		case "--dry-run":
			args.dryRun = true
		case "--skip-hardlinks":
			args.skipHardlinks = true
		case "--hash":
			value, err := takesValue(arg, &i)
			if err != nil {
				return nil, err
			}
			args.hashAlg = value
		case "--workers":
			value, err := takesValue(arg, &i)
			if err != nil {
				return nil, err
			}
			workers, err := strconv.Atoi(value)
			if err != nil || workers < 1 {
				return nil, fmt.Errorf("invalid worker count: %s", value)
			}
			args.workers = workers
		case "--verbose", "-v":
			value, err := takesValue(arg, &i)
			if err != nil {
				return nil, err
			}
			level, err := strconv.Atoi(value)
			if err != nil || level < 0 {
				return nil, fmt.Errorf("invalid verbose level: %s", value)
			}
			args.verbose = level
		case "--debug":
			value, err := takesValue(arg, &i)
			if err != nil {
				return nil, err
			}
			args.debug = value
		case "--config":
			value, err := takesValue(arg, &i)
			if err != nil {
				return nil, err
			}
			args.configPath = value
		case "-o", "--output":
			value, err := takesValue(arg, &i)
			if err != nil {
				return nil, err
			}
			args.outputPath = value
		default:
			if len(arg) > 0 && arg[0] == '-' {
				return nil, fmt.Errorf("unknown argument: %s", arg)
			}
			if args.directory != "" {
				return nil, fmt.Errorf("only one directory may be given")
			}
			args.directory = arg
		}
	}

	if args.printMode == args.deleteMode {
		return nil, fmt.Errorf("exactly one of -p or -d is required")
	}
	if args.dryRun && !args.deleteMode {
		return nil, fmt.Errorf("--dry-run only applies to delete mode")
	}
	if args.outputPath != "" && !args.printMode {
		return nil, fmt.Errorf("-o only applies to print mode")
	}

	return args, nil
}

// setupSignalHandler closes the returned channel on SIGINT/SIGTERM so
// in-flight hashing stops between buffer reads.
func setupSignalHandler() <-chan struct{} {
	shutdownChan := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		close(shutdownChan)
	}()
	return shutdownChan
}

func showUsage() {
	fmt.Fprintf(os.Stderr, "Usage: rmdupes {-p | -d} [options] [directory]\n")
	fmt.Fprintf(os.Stderr, "Try 'rmdupes --help' for more information.\n")
}

func showHelp() {
	fmt.Printf("rmdupes - find and remove duplicate files by content\n\n")
	fmt.Printf("Usage: rmdupes {-p | -d} [options] [directory]\n\n")

	fmt.Printf("Duplicates are detected by content hash, recursively under the given\n")
	fmt.Printf("directory (default: current directory). Exactly one copy per unique\n")
	fmt.Printf("content is kept: the file with the shortest path.\n\n")

	fmt.Printf("MODES (exactly one required):\n")
	fmt.Printf("  -p                Print duplicate groups. Lines starting with '#'\n")
	fmt.Printf("                    are the files kept after removal.\n")
	fmt.Printf("  -d                Delete duplicates, keeping the shortest name.\n\n")

	fmt.Printf("OPTIONS:\n")
	fmt.Printf("  --dry-run         With -d, report removals without deleting\n")
	fmt.Printf("  --skip-hardlinks  Treat files sharing an inode as one file\n")
	fmt.Printf("  --hash ALG        Hash algorithm: sha1, sha256, sha512\n")
	fmt.Printf("  --workers N       Concurrent hash workers\n")
	fmt.Printf("  --verbose N, -v N Verbose level (0-3)\n")
	fmt.Printf("  --debug FLAGS     Debug flags (comma-separated, e.g. walk,hash)\n")
	fmt.Printf("  --config PATH     Config file path\n")
	fmt.Printf("  -o FILE           With -p, write the report to FILE\n")
	fmt.Printf("  --help, -h        Show this help\n")
	fmt.Printf("  --version         Show version\n\n")

	fmt.Printf("EXAMPLES:\n")
	fmt.Printf("  rmdupes -p /home/viktor/Documents\n")
	fmt.Printf("      Print duplicates found in the directory.\n")
	fmt.Printf("  rmdupes /home/viktor/Documents -p\n")
	fmt.Printf("      Same thing; argument order does not matter.\n")
	fmt.Printf("  rmdupes -d /home/viktor/Documents\n")
	fmt.Printf("      Remove duplicates from the directory.\n")
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes. Usage problems and output-file problems are distinguished from
// generic processing failures so scripts can react to them.
const (
	exitOK         = 0
	exitError      = 1
	exitUsage      = 2
	exitProcessing = 4
	exitOutputFile = 5
	exitCancelled  = 130
)

var (
	// Filtering
	includeTypes    []string
	excludeTypes    []string
	includeExts     []string
	excludeExts     []string
	otherText       bool
	noGitignore     bool
	useNpmignore    bool
	useDockerignore bool
	ignoreFile      string
	categoriesFile  string

	// Output
	outputFormat    string
	outputFile      string
	overwriteOutput bool
	copyToClipboard bool
	pdfOutputFile   string
	baseDirFlag     string

	// Token counting
	disableTokens  bool
	tokenizerKind  string
	tokenizerModel string
	tokenizerPath  string

	// Processing
	numThreads int

	// Modes and verbosity
	interactiveMode bool
	showProgress    bool
	quietMode       bool
	verboseMode     bool
	listTypes       bool

	cfgFile string
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "stitcher [PATHS...]",
	Short: "Concatenate project files into a single shareable document",
	Long: `Stitcher walks the given files and directories, filters them by file type
and ignore rules, and stitches the survivors into one Markdown, plain text
or JSON document with a file tree and summary. Git URLs are cloned and web
pages are converted to Markdown sections.`,
	Version:       version,
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		os.Exit(run(cmd, args))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/stitcher/config.toml)")

	rootCmd.Flags().StringSliceVarP(&includeTypes, "types", "t", nil, "File type categories to include (e.g. python,web)")
	viper.BindPFlag("types", rootCmd.Flags().Lookup("types"))
	rootCmd.Flags().StringSliceVar(&excludeTypes, "exclude-types", nil, "File type categories to exclude")
	viper.BindPFlag("exclude_types", rootCmd.Flags().Lookup("exclude-types"))
	rootCmd.Flags().StringSliceVarP(&includeExts, "include-extensions", "e", nil, "Extra extensions to include (e.g. .foo,.bar)")
	viper.BindPFlag("include_extensions", rootCmd.Flags().Lookup("include-extensions"))
	rootCmd.Flags().StringSliceVar(&excludeExts, "exclude-extensions", nil, "Extensions to exclude")
	viper.BindPFlag("exclude_extensions", rootCmd.Flags().Lookup("exclude-extensions"))
	rootCmd.Flags().BoolVar(&otherText, "other-text", false, "Include unrecognized text-like files (default when no types are selected)")
	viper.BindPFlag("other_text", rootCmd.Flags().Lookup("other-text"))

	rootCmd.Flags().BoolVar(&noGitignore, "no-gitignore", false, "Don't respect .gitignore files")
	viper.BindPFlag("no_gitignore", rootCmd.Flags().Lookup("no-gitignore"))
	rootCmd.Flags().BoolVar(&useNpmignore, "npmignore", false, "Also respect .npmignore files")
	viper.BindPFlag("npmignore", rootCmd.Flags().Lookup("npmignore"))
	rootCmd.Flags().BoolVar(&useDockerignore, "dockerignore", false, "Also respect .dockerignore files")
	viper.BindPFlag("dockerignore", rootCmd.Flags().Lookup("dockerignore"))
	rootCmd.Flags().StringVar(&ignoreFile, "ignore-file", "", "Additional ignore file with gitignore-style patterns")
	viper.BindPFlag("ignore_file", rootCmd.Flags().Lookup("ignore-file"))
	rootCmd.Flags().StringVar(&categoriesFile, "categories-file", "", "Path to a categories.yml overriding the built-in file type table")
	viper.BindPFlag("categories_file", rootCmd.Flags().Lookup("categories-file"))

	rootCmd.Flags().StringVarP(&outputFormat, "format", "f", "markdown", "Output format: markdown, plain or json")
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the document to a file instead of stdout")
	viper.BindPFlag("output", rootCmd.Flags().Lookup("output"))
	rootCmd.Flags().BoolVar(&overwriteOutput, "overwrite", false, "Overwrite the output file if it exists")
	rootCmd.Flags().BoolVarP(&copyToClipboard, "clipboard", "c", false, "Copy the document to the clipboard")
	viper.BindPFlag("clipboard", rootCmd.Flags().Lookup("clipboard"))
	rootCmd.Flags().StringVar(&pdfOutputFile, "pdf", "", "Also save a syntax-highlighted PDF to the given path")
	viper.BindPFlag("pdf", rootCmd.Flags().Lookup("pdf"))
	rootCmd.Flags().StringVar(&baseDirFlag, "base-dir", "", "Directory relative display paths are anchored at")

	rootCmd.Flags().BoolVar(&disableTokens, "no-tokens", false, "Disable token counting")
	viper.BindPFlag("no_tokens", rootCmd.Flags().Lookup("no-tokens"))
	rootCmd.Flags().StringVar(&tokenizerKind, "tokenizer", "tiktoken", "Tokenizer to use: tiktoken or huggingface")
	viper.BindPFlag("tokenizer", rootCmd.Flags().Lookup("tokenizer"))
	rootCmd.Flags().StringVar(&tokenizerModel, "model", "", "Model name for the tokenizer (e.g. gpt-4o)")
	viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))
	rootCmd.Flags().StringVar(&tokenizerPath, "tokenizer-file", "", "Path to a local tokenizer.json")
	viper.BindPFlag("tokenizer_file", rootCmd.Flags().Lookup("tokenizer-file"))

	rootCmd.Flags().IntVar(&numThreads, "threads", 0, "Worker threads for token counting (0 for auto)")
	viper.BindPFlag("threads", rootCmd.Flags().Lookup("threads"))

	rootCmd.Flags().BoolVarP(&interactiveMode, "interactive", "i", false, "Pick paths with an interactive fuzzy finder")
	rootCmd.Flags().BoolVar(&showProgress, "progress", false, "Report progress on stderr")
	rootCmd.Flags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress warnings and status output")
	rootCmd.Flags().BoolVarP(&verboseMode, "verbose", "v", false, "Report per-phase status on stderr")
	rootCmd.Flags().BoolVar(&listTypes, "list-types", false, "List the known file type categories and exit")

	viper.SetDefault("format", "markdown")
	viper.SetDefault("tokenizer", "tiktoken")
	viper.SetDefault("threads", 0)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "stitcher"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix("STITCHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}
}

// cliReporter routes generator feedback to stderr according to the verbosity
// flags, so the document on stdout stays clean.
type cliReporter struct {
	quiet    bool
	verbose  bool
	progress bool
}

func (r *cliReporter) Status(msg string) {
	if r.verbose && !r.quiet {
		fmt.Fprintln(os.Stderr, msg)
	}
}

func (r *cliReporter) Progress(percent int) {
	if !r.progress || r.quiet {
		return
	}
	fmt.Fprintf(os.Stderr, "\rProgress: %3d%%", percent)
	if percent >= 100 {
		fmt.Fprintln(os.Stderr)
	}
}

func (r *cliReporter) Warnf(format string, args ...any) {
	if !r.quiet {
		fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
}

// applyConfig lets config file and environment values through for flags the
// user did not set on the command line.
func applyConfig(cmd *cobra.Command) {
	fl := cmd.Flags()
	if !fl.Changed("format") {
		outputFormat = viper.GetString("format")
	}
	if !fl.Changed("tokenizer") {
		tokenizerKind = viper.GetString("tokenizer")
	}
	if !fl.Changed("model") {
		tokenizerModel = viper.GetString("model")
	}
	if !fl.Changed("threads") {
		numThreads = viper.GetInt("threads")
	}
	if !fl.Changed("no-tokens") {
		disableTokens = viper.GetBool("no_tokens")
	}
	if !fl.Changed("no-gitignore") {
		noGitignore = viper.GetBool("no_gitignore")
	}
}

func run(cmd *cobra.Command, args []string) int {
	applyConfig(cmd)
	rep := &cliReporter{quiet: quietMode, verbose: verboseMode, progress: showProgress}

	defs, err := LoadCategoryDefinitions(categoriesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitError
	}

	if listTypes {
		printTypeList(defs)
		return exitOK
	}

	inputs := args
	if interactiveMode {
		selected, err := selectPathsInteractively()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitError
		}
		if selected == nil {
			return exitOK
		}
		inputs = selected
	}
	if len(inputs) == 0 {
		inputs = []string{"."}
	}

	// Remote inputs are resolved up front: git URLs become local clone
	// directories, web pages become pre-built sections.
	var (
		localPaths []string
		extras     []StitchedFile
		tempDirs   []string
	)
	defer func() {
		for _, dir := range tempDirs {
			_ = os.RemoveAll(dir)
		}
	}()
	for _, input := range inputs {
		switch {
		case isGitURL(input):
			dir, err := cloneGitRepo(input, rep)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return exitProcessing
			}
			tempDirs = append(tempDirs, dir)
			localPaths = append(localPaths, dir)
		case isWebURL(input):
			section, err := fetchWebPage(input, rep)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return exitProcessing
			}
			extras = append(extras, section)
		default:
			abs, err := filepath.Abs(input)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: invalid path %q: %v\n", input, err)
				return exitUsage
			}
			if _, err := os.Lstat(abs); err != nil {
				fmt.Fprintf(os.Stderr, "Error: path does not exist: %s\n", input)
				return exitUsage
			}
			localPaths = append(localPaths, abs)
		}
	}
	if len(localPaths) == 0 && len(extras) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no inputs to process")
		return exitUsage
	}

	switch outputFormat {
	case "markdown", "plain", "json":
	default:
		fmt.Fprintf(os.Stderr, "Error: unsupported output format %q (markdown, plain or json)\n", outputFormat)
		return exitUsage
	}

	baseDir, err := resolveBaseDir(localPaths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	exts, names, selectedCats, err := defs.Select(includeTypes, excludeTypes, includeExts, excludeExts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}

	// With no explicit type or extension selection the catch-all for
	// unrecognized text files is on, so a bare run really means "all text".
	handleOther := len(includeTypes) == 0 && len(includeExts) == 0
	if cmd.Flags().Changed("other-text") {
		handleOther = otherText
	}

	filter := FilterConfig{
		SelectedExtensions: exts,
		SelectedFilenames:  names,
		AllKnownExtensions: defs.AllExtensions(),
		AllKnownFilenames:  defs.AllFilenames(),
		HandleOtherText:    handleOther,
		UseGitignore:       !noGitignore,
		UseNpmignore:       useNpmignore,
		UseDockerignore:    useDockerignore,
		GlobalIgnore:       LoadGlobalIgnoreSpec(baseDir, rep),
	}
	project := LoadIgnoreSpec(baseDir, filter.UseGitignore, filter.UseNpmignore, filter.UseDockerignore, rep)
	if ignoreFile != "" {
		project = CombineIgnoreSpecs(project, LoadIgnoreFile(ignoreFile, baseDir, rep))
	}
	filter.ProjectIgnore = project

	var tokenizer Tokenizer
	if !disableTokens {
		tokenizer, err = NewTokenizer(tokenizerKind, tokenizerModel, tokenizerPath, rep)
		if err != nil {
			rep.Warnf("token counting disabled: %v", err)
		} else {
			defer tokenizer.Close()
		}
	}

	threads := numThreads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	gen := NewGenerator(GeneratorConfig{
		Filter:     filter,
		Request:    WalkRequest{SelectedPaths: localPaths, BaseDirectory: baseDir},
		Encodings:  defaultEncodings,
		Categories: selectedCats,
		Extra:      extras,
		Tokenizer:  tokenizer,
		Threads:    threads,
		Reporter:   rep,
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		if _, ok := <-sigs; ok {
			gen.Cancel()
		}
	}()

	result, err := gen.Run()
	switch {
	case errors.Is(err, errCancelled):
		fmt.Fprintln(os.Stderr, "Operation cancelled.")
		return exitCancelled
	case errors.Is(err, errNoMatches):
		fmt.Fprintln(os.Stderr, "No matching files found.")
		return exitOK
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitProcessing
	}

	opts := RenderOptions{
		Format:           outputFormat,
		IncludeStats:     true,
		IncludeTimestamp: true,
		IncludeTokens:    tokenizer != nil,
		LineEnding:       "\n",
	}
	var doc bytes.Buffer
	if err := RenderDocument(&doc, result, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitProcessing
	}

	return deliver(doc.Bytes(), result, opts, rep)
}

// deliver routes the rendered document to its destinations: file, clipboard,
// PDF, or stdout when nothing else was asked for.
func deliver(doc []byte, result *Result, opts RenderOptions, rep *cliReporter) int {
	delivered := false

	if outputFile != "" {
		if !overwriteOutput {
			if _, err := os.Stat(outputFile); err == nil {
				fmt.Fprintf(os.Stderr, "Error: output file %s already exists (use --overwrite)\n", outputFile)
				return exitOutputFile
			}
		}
		if err := os.WriteFile(outputFile, doc, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing %s: %v\n", outputFile, err)
			return exitOutputFile
		}
		rep.Status(fmt.Sprintf("Wrote %s (%s)", outputFile, formatSize(int64(len(doc)))))
		delivered = true
	}

	if copyToClipboard {
		if err := clipboard.WriteAll(string(doc)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: copying to clipboard: %v\n", err)
			return exitError
		}
		rep.Status("Copied to clipboard")
		delivered = true
	}

	if pdfOutputFile != "" {
		if err := RenderPDF(result, opts, pdfOutputFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitOutputFile
		}
		rep.Status(fmt.Sprintf("Wrote %s", pdfOutputFile))
		delivered = true
	}

	if !delivered {
		if _, err := os.Stdout.Write(doc); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing to stdout: %v\n", err)
			return exitError
		}
	}
	return exitOK
}

// resolveBaseDir picks the directory display paths are made relative to: the
// --base-dir flag, a single selected directory, or the current directory.
func resolveBaseDir(localPaths []string) (string, error) {
	if baseDirFlag != "" {
		abs, err := filepath.Abs(baseDirFlag)
		if err != nil {
			return "", fmt.Errorf("invalid base directory %q: %w", baseDirFlag, err)
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("base directory %s is not a directory", baseDirFlag)
		}
		return abs, nil
	}
	if len(localPaths) == 1 {
		if info, err := os.Stat(localPaths[0]); err == nil && info.IsDir() {
			return localPaths[0], nil
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determining working directory: %w", err)
	}
	return cwd, nil
}

func printTypeList(defs *CategoryDefinitions) {
	fmt.Println("Supported file type categories:")
	for _, name := range defs.Names() {
		info := defs.Categories[name]
		desc := info.Description
		if desc == "" {
			desc = strings.Join(info.Extensions, " ")
		}
		fmt.Printf("  %-22s %s\n", name, desc)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitUsage)
	}
}

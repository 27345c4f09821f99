package main

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/perceiver/backend/cpu"
	"github.com/born-ml/perceiver/perceiver"
	"github.com/born-ml/perceiver/tensor"
)

const version = "v0.1.0-dev"

// NewCLI builds the command tree.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "perceiver",
		Short:         "Perceiver classifier on a pure Go CPU backend",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	rootCmd.PersistentFlags().String("config", "", "YAML model config (defaults apply to unset keys)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Classify a random input batch",
		Args:  cobra.NoArgs,
		RunE:  RunHandler,
	}
	runCmd.Flags().Int("batch", 1, "Batch size")
	runCmd.Flags().IntSlice("shape", []int{32, 32}, "Spatial axes of the input (comma separated)")
	runCmd.Flags().Int("top", 3, "Classes shown per example")
	runCmd.Flags().String("weights", "", "SafeTensors weights from \"perceiver init\"; its config applies unless --config is set")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write freshly initialized weights to a SafeTensors file",
		Args:  cobra.NoArgs,
		RunE:  InitHandler,
	}
	initCmd.Flags().String("out", "perceiver.safetensors", "Output path")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the layer stack and weight sharing",
		Args:  cobra.NoArgs,
		RunE:  InspectHandler,
	}
	inspectCmd.Flags().Bool("yaml", false, "Print the effective config as YAML")

	classifyCmd := &cobra.Command{
		Use:   "classify TEXT...",
		Short: "Classify text through the token front-end",
		Args:  cobra.MinimumNArgs(1),
		RunE:  ClassifyHandler,
	}
	classifyCmd.Flags().String("encoding", "cl100k_base", "Tokenizer: a tiktoken encoding or \"bytes\"")
	classifyCmd.Flags().Int("top", 3, "Classes shown per text")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "perceiver %s\n", version)
		},
	}

	rootCmd.AddCommand(runCmd, initCmd, inspectCmd, classifyCmd, versionCmd)
	return rootCmd
}

func loadConfig(cmd *cobra.Command) (perceiver.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return perceiver.Config{}, err
	}
	if path == "" {
		return perceiver.DefaultConfig(), nil
	}
	cfg, err := perceiver.LoadConfig(path)
	if err != nil {
		return perceiver.Config{}, err
	}
	slog.Debug("config loaded", "path", path)
	return cfg, nil
}

// loadModel builds a model from --config, or from the config stored with
// --weights when no --config is given, and loads the weights.
func loadModel(cmd *cobra.Command, backend *cpu.Backend) (*perceiver.Model[*cpu.Backend], error) {
	weights, err := cmd.Flags().GetString("weights")
	if err != nil {
		return nil, err
	}
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	var cfg perceiver.Config
	if weights != "" && configPath == "" {
		cfg, err = perceiver.ReadCheckpointConfig(weights)
	} else {
		cfg, err = loadConfig(cmd)
	}
	if err != nil {
		return nil, err
	}

	model, err := perceiver.New(cfg, backend)
	if err != nil {
		return nil, err
	}
	if weights != "" {
		if err := model.LoadWeights(weights); err != nil {
			return nil, err
		}
		slog.Debug("weights loaded", "path", weights, "params", model.NumParameters())
	}
	return model, nil
}

// RunHandler classifies a Randn batch of the requested spatial shape.
func RunHandler(cmd *cobra.Command, _ []string) error {
	batch, err := cmd.Flags().GetInt("batch")
	if err != nil {
		return err
	}
	spatial, err := cmd.Flags().GetIntSlice("shape")
	if err != nil {
		return err
	}
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}
	if batch <= 0 {
		return fmt.Errorf("--batch must be positive, got %d", batch)
	}

	backend := cpu.New()
	model, err := loadModel(cmd, backend)
	if err != nil {
		return err
	}
	cfg := model.Config()

	shape := append(tensor.Shape{batch}, spatial...)
	shape = append(shape, cfg.InputChannels)

	start := time.Now()
	logits, err := model.Forward(tensor.Randn(shape, backend), nil)
	if err != nil {
		return err
	}
	slog.Info("forward", "input", shape, "duration", time.Since(start))

	labels := make([]string, batch)
	for i := range labels {
		labels[i] = strconv.Itoa(i)
	}
	renderLogits(cmd.OutOrStdout(), "EXAMPLE", labels, logits.Data(), cfg.NumClasses, top)
	return nil
}

// InitHandler writes the weights of a freshly built model together with its
// config.
func InitHandler(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}

	model, err := perceiver.New(cfg, cpu.New())
	if err != nil {
		return err
	}
	if err := model.SaveWeights(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d parameters to %s\n", model.NumParameters(), out)
	return nil
}

// InspectHandler prints one row per sublayer position.
func InspectHandler(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dump, err := cmd.Flags().GetBool("yaml")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dump {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}

	model, err := perceiver.New(cfg, cpu.New())
	if err != nil {
		return err
	}

	var data [][]string
	for _, info := range model.Describe() {
		block := "-"
		if info.Block >= 0 {
			block = strconv.Itoa(info.Block)
		}
		shared := "no"
		if info.Shared {
			shared = "yes"
		}
		data = append(data, []string{
			strconv.Itoa(info.Depth),
			block,
			string(info.Role),
			strconv.Itoa(info.Instance),
			shared,
			strconv.Itoa(info.Params),
		})
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"DEPTH", "BLOCK", "ROLE", "INSTANCE", "SHARED", "PARAMS"})
	table.SetFooter([]string{"", "", "", "", "TOTAL", strconv.Itoa(model.NumParameters())})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk(data)
	table.Render()

	if roles := model.Cache().Roles(); len(roles) > 0 {
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		fmt.Fprintf(out, "tied roles: %s\n", strings.Join(names, ", "))
	}
	return nil
}

// ClassifyHandler runs the text front-end over the arguments.
func ClassifyHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	encoding, err := cmd.Flags().GetString("encoding")
	if err != nil {
		return err
	}
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}

	var tok perceiver.Tokenizer
	if encoding == "bytes" {
		tok = perceiver.NewByteTokenizer()
	} else if tok, err = perceiver.NewTikToken(encoding); err != nil {
		return err
	}

	classifier, err := perceiver.NewTextClassifier(cfg, tok, cpu.New())
	if err != nil {
		return err
	}

	start := time.Now()
	logits, err := classifier.Classify(args)
	if err != nil {
		return err
	}
	slog.Info("classify", "texts", len(args), "tokenizer", tok.Name(), "duration", time.Since(start))

	renderLogits(cmd.OutOrStdout(), "TEXT", args, logits.Data(), cfg.NumClasses, top)
	return nil
}

// renderLogits prints the top classes of every row of logits [rows, classes].
func renderLogits(w io.Writer, label string, rows []string, logits []float32, classes, top int) {
	top = max(min(top, classes), 1)

	var data [][]string
	for i, name := range rows {
		row := logits[i*classes : (i+1)*classes]
		for rank, class := range topK(row, top) {
			data = append(data, []string{
				name,
				strconv.Itoa(rank + 1),
				strconv.Itoa(class),
				strconv.FormatFloat(float64(row[class]), 'f', 4, 32),
			})
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{label, "RANK", "CLASS", "LOGIT"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetAutoMergeCells(true)
	table.AppendBulk(data)
	table.Render()
}

// topK returns the indices of the k largest values, largest first.
func topK(values []float32, k int) []int {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })
	return idx[:k]
}

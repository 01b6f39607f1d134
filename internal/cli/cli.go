package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/isotopp/falimage/internal/args"
	"github.com/isotopp/falimage/internal/config"
	"github.com/isotopp/falimage/internal/download"
	"github.com/isotopp/falimage/internal/registry"
	"github.com/isotopp/falimage/internal/request"
	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type options struct {
	model          string
	prompt         string
	promptFile     string
	numImages      int
	name           string
	loras          string
	imageSize      string
	width          int
	height         int
	seed           int64
	steps          int
	guidance       float64
	strength       float64
	outputFormat   string
	safetyChecker  bool
	imageURLs      string
	dryRun         bool
	open           bool
	outDir         string
	requestTimeout time.Duration
}

// New builds the root command. All validation happens before any network
// call; invalid flag combinations exit non-zero without touching the API.
func New(injector *do.Injector) *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:           "falimage",
		Short:         "Generate images with hosted fal.ai models and save them locally",
		Long: `Unified image generation tool for multiple fal.ai models and a LoRA workflow.

Examples:
  falimage -m schnell -p "a cat" --num-images 2 -i landscape_4_3
  falimage -m dev -p "a cat" --num-inference-steps 28 --guidance-scale 3.5
  falimage -m lora -p "a cat" --loras "my_lora:0.8,https://host/x.safetensors:1.2" --name cat
  falimage -m lora -f prompt.txt -i portrait_4_3 --dry-run`,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, injector, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.model, "model", "m", "schnell",
		"which model/workflow to use ("+strings.Join(registry.Keys(), ", ")+")")
	f.StringVarP(&o.prompt, "prompt", "p", "", "prompt for image generation")
	f.StringVarP(&o.promptFile, "promptfile", "f", "",
		"file containing the prompt (looked up under the prompts dir; .txt implied)")
	f.IntVar(&o.numImages, "num-images", 1, "number of images to generate")
	f.StringVar(&o.name, "name", "", "base name for saved images")
	f.StringVar(&o.loras, "loras", "",
		`for model "lora": JSON list of {path, scale} or comma list of names/URLs, optionally with :scale`)
	f.StringVarP(&o.imageSize, "image-size", "i", "portrait_4_3",
		"named size ("+strings.Join(args.SizeNames(), ", ")+"); or use --width/--height")
	f.IntVarP(&o.width, "width", "w", 0, "width of generated image (requires --height)")
	f.IntVarP(&o.height, "height", "H", 0, "height of generated image (requires --width)")
	f.Int64VarP(&o.seed, "seed", "s", 0, "seed (0=random)")
	f.IntVar(&o.steps, "num-inference-steps", 0, "inference steps (varies by model)")
	f.Float64Var(&o.guidance, "guidance-scale", 0, "guidance scale (where supported)")
	f.Float64Var(&o.strength, "strength", 0, "for the realism model")
	f.StringVar(&o.outputFormat, "output-format", "jpeg", "output image format, jpeg or png (where supported)")
	f.BoolVar(&o.safetyChecker, "enable-safety-checker", false, "enable or disable the safety checker (where supported)")
	f.StringVar(&o.imageURLs, "image-urls", "",
		"comma-separated URLs or shorthand names (seedream-edit only)")
	f.BoolVarP(&o.dryRun, "dry-run", "n", false, "do not send; print the request and exit")
	f.BoolVar(&o.open, "open", true, "open saved images with the system default handler")
	f.StringVar(&o.outDir, "outdir", "assets", "directory for saved images")
	f.DurationVar(&o.requestTimeout, "request-timeout", 0, "bound on the generation call (0 = wait forever)")

	return cmd
}

func run(cmd *cobra.Command, injector *do.Injector, o *options) error {
	ctx := cmd.Context()
	cfg := do.MustInvoke[config.Config](injector)
	out := cmd.OutOrStdout()

	model, ok := registry.Lookup(o.model)
	if !ok {
		return fmt.Errorf("unknown model %q; available: %s", o.model, strings.Join(registry.Keys(), ", "))
	}

	if o.outputFormat != "jpeg" && o.outputFormat != "png" {
		return fmt.Errorf("invalid --output-format %q; allowed: jpeg, png", o.outputFormat)
	}

	prompt := o.prompt
	prefix := o.name
	if o.promptFile != "" {
		text, stem, err := loadPromptFile(o.promptFile, cfg.PromptsDir)
		if err != nil {
			return err
		}
		prompt = text
		prefix = stem
	}
	if prompt == "" {
		return errors.New("either --prompt or --promptfile must be provided")
	}

	// The default named size yields to explicit dimensions; only an
	// explicitly chosen named size conflicts with --width/--height.
	named := o.imageSize
	if !cmd.Flags().Changed("image-size") && (o.width != 0 || o.height != 0) {
		named = ""
	}
	size, err := args.CoerceSize(named, o.width, o.height)
	if err != nil {
		return err
	}

	var loras any
	if o.loras != "" {
		refs := args.ParseLoras(o.loras, cfg.LoraBaseURL)
		fmt.Fprintf(out, "*** DEBUG: loras=%+v\n", refs)
		loras = refs
	}

	var imageURLs any
	if o.imageURLs != "" {
		imageURLs = args.ParseImageURLs(o.imageURLs, cfg.ImageBaseURL)
	}

	values := map[string]any{
		"prompt":                prompt,
		"image_size":            size,
		"num_images":            o.numImages,
		"seed":                  o.seed,
		"num_inference_steps":   changedOrNil(cmd, "num-inference-steps", o.steps),
		"guidance_scale":        changedOrNil(cmd, "guidance-scale", o.guidance),
		"strength":              changedOrNil(cmd, "strength", o.strength),
		"output_format":         o.outputFormat,
		"enable_safety_checker": changedOrNil(cmd, "enable-safety-checker", o.safetyChecker),
		"loras":                 loras,
		"image_urls":            imageURLs,
	}
	built := args.Build(model, values)

	if ignored := ignoredOptions(model, values); len(ignored) > 0 {
		fmt.Fprintf(out, "Note: Ignoring unsupported options for model '%s': %s\n",
			o.model, strings.Join(ignored, ", "))
	}

	if !o.dryRun {
		if err := cfg.RequireKey(); err != nil {
			return err
		}
	}

	sendCtx := ctx
	if o.requestTimeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, o.requestTimeout)
		defer cancel()
	}

	dispatcher := do.MustInvoke[*request.Dispatcher](injector)
	result, err := dispatcher.Send(sendCtx, o.model, model, built, o.dryRun)
	if err != nil {
		return err
	}

	urls := args.ExtractURLs(result)
	if len(urls) == 0 {
		fmt.Fprintln(out, "No image URLs returned.")
		return nil
	}

	downloader := do.MustInvoke[*download.Downloader](injector)
	_, err = downloader.SaveAll(ctx, download.Params{
		URLs:   urls,
		Prefix: prefix,
		Dir:    o.outDir,
		Open:   o.open,
	})
	return err
}

// changedOrNil keeps a value only when the user actually set the flag, so
// per-model defaults stay in charge otherwise.
func changedOrNil(cmd *cobra.Command, flag string, v any) any {
	return lo.Ternary[any](cmd.Flags().Changed(flag), v, nil)
}

func loadPromptFile(name, dir string) (string, string, error) {
	candidate := name
	if !strings.HasSuffix(candidate, ".txt") {
		candidate += ".txt"
	}
	path := candidate
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, filepath.Base(candidate))
	}
	text, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("prompt file not found: %s", path)
	}
	stem := strings.TrimSuffix(filepath.Base(path), ".txt")
	return strings.TrimSpace(string(text)), stem, nil
}

func ignoredOptions(model registry.Model, values map[string]any) []string {
	keys := lo.Keys(lo.PickBy(values, func(k string, v any) bool {
		return v != nil && !model.Allows(k)
	}))
	sort.Strings(keys)
	return keys
}

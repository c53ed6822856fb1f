package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/annoset"
	"github.com/hupe1980/annoset/codec"
	"github.com/hupe1980/annoset/dataset"
	"github.com/hupe1980/annoset/format"
)

// ioFlags are the input and output flags shared by the dataset commands.
type ioFlags struct {
	input        string
	inputFormat  string
	output       string
	outputFormat string
	saveMedia    bool
	imageExt     string
	compression  string
}

func (f *ioFlags) register(cmd *cobra.Command, withInput bool) {
	fs := cmd.Flags()
	if withInput {
		fs.StringVarP(&f.input, "input", "i", "", "input location (directory, s3:// or minio://)")
		fs.StringVar(&f.inputFormat, "input-format", annoset.AutoFormat, "input format")
		_ = cmd.MarkFlagRequired("input")
	}
	fs.StringVarP(&f.output, "output", "o", "", "output location (directory, s3:// or minio://)")
	fs.StringVarP(&f.outputFormat, "format", "f", "", "output format")
	fs.BoolVar(&f.saveMedia, "save-media", false, "copy images next to the annotations")
	fs.StringVar(&f.imageExt, "image-ext", "", "extension of saved images, e.g. .png")
	fs.StringVar(&f.compression, "compression", "none", "document compression: none, zstd, lz4")
	_ = cmd.MarkFlagRequired("output")
}

func (f *ioFlags) formatOptions() (format.Options, error) {
	c, err := codec.ParseCompression(f.compression)
	if err != nil {
		return format.Options{}, err
	}
	return format.Options{SaveMedia: f.saveMedia, ImageExt: f.imageExt, Compression: c}, nil
}

// load imports the input dataset and reports warnings on stderr.
func (a *app) load(ctx context.Context, f *ioFlags) (*dataset.Dataset, string, error) {
	store, err := openStore(ctx, a.cfg, f.input, a.session.Resources())
	if err != nil {
		return nil, "", err
	}
	name := f.inputFormat
	if name == "" || name == annoset.AutoFormat {
		if name, err = a.session.Detect(ctx, store); err != nil {
			return nil, "", err
		}
	}
	ds, warnings, err := a.session.Import(ctx, name, store, format.Options{})
	if err != nil {
		return nil, "", err
	}
	for _, w := range warnings {
		printWarning(a.stderr, w)
	}
	return ds, name, nil
}

// save exports src. The output format defaults to fallback.
func (a *app) save(ctx context.Context, f *ioFlags, src dataset.Source, fallback string) error {
	fo, err := f.formatOptions()
	if err != nil {
		return err
	}
	name := f.outputFormat
	if name == "" {
		name = fallback
	}
	store, err := openStore(ctx, a.cfg, f.output, a.session.Resources())
	if err != nil {
		return err
	}
	return a.session.Export(ctx, src, name, store, fo)
}

func newConvertCmd(a *app) *cobra.Command {
	var f ioFlags
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a dataset between formats",
		Example: `  annoset convert -i ./coco_like -o ./out -f yolo --save-media
  annoset convert -i s3://bucket/datasets/v1 -o ./local -f native --compression zstd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.outputFormat == "" {
				return fmt.Errorf("--format is required")
			}
			ds, _, err := a.load(cmd.Context(), &f)
			if err != nil {
				return err
			}
			if err := a.save(cmd.Context(), &f, ds, ""); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "converted %d items to %s\n", ds.Len(), f.outputFormat)
			return nil
		},
	}
	f.register(cmd, true)
	return cmd
}

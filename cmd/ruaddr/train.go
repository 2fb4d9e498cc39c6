package main

import (
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ru-addr/internal/address"
	"github.com/ru-addr/internal/format"
	"github.com/ru-addr/internal/postal"
	"github.com/ru-addr/internal/sink"
	"github.com/ru-addr/internal/source"
	"github.com/ru-addr/internal/training"
)

type trainFlags struct {
	outDir   string
	untagged bool
	seed     int64
}

func (f *trainFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.outDir, "out-dir", "o", ".", "output directory")
	cmd.Flags().BoolVarP(&f.untagged, "untagged", "u", false, "write untagged formatted addresses")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "random seed (default: time based)")
}

func (f *trainFlags) rng() *rand.Rand {
	seed := f.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func (f *trainFlags) writer(tagged, untagged string) (*training.Writer, error) {
	name := tagged
	if f.untagged {
		name = untagged
	}
	path := filepath.Join(f.outDir, name)
	s, err := sink.CreateTSV(path)
	if err != nil {
		return nil, err
	}
	log.Printf("Writing %s", path)
	return training.NewWriter(s, !f.untagged), nil
}

func createTrainCmd() *cobra.Command {
	var flags trainFlags

	cmd := &cobra.Command{
		Use:   "train [separated.tsv]",
		Short: "Build parser training data from separated address columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.Open(args[0], source.FormatTSV)
			if err != nil {
				return err
			}
			defer src.Close()

			w, err := flags.writer(training.TaggedFilename, training.UntaggedFilename)
			if err != nil {
				return err
			}

			t := training.NewTSVTrainer(format.NewTemplateFormatter(), address.TrainingFieldMap, flags.rng(), !flags.untagged, localDebug)
			err = t.Run(src, w)
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("training data failed: %w", err)
			}

			log.Printf("Wrote %d formatted addresses", w.Count())
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func createOSMCmd() *cobra.Command {
	var (
		flags  trainFlags
		expand bool
	)

	cmd := &cobra.Command{
		Use:   "osm [extract.osm]",
		Short: "Build parser training data from addr:* tags of an OSM extract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := source.Open(args[0], source.FormatOSM)
			if err != nil {
				return err
			}
			defer src.Close()

			w, err := flags.writer(training.OSMTaggedFilename, training.OSMUntaggedFilename)
			if err != nil {
				return err
			}

			var expander training.Expander
			if expand {
				expander = func(street string) []string {
					return postal.ExpandStreet(street)
				}
			}

			t := training.NewOSMTrainer(format.NewTemplateFormatter(), flags.rng(), expander, !flags.untagged, localDebug)
			err = t.Run(src, w)
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("training data failed: %w", err)
			}

			log.Printf("Wrote %d formatted addresses", w.Count())
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&expand, "expand", false, "vary street names with libpostal expansions")
	return cmd
}

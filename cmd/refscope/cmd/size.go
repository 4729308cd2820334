package cmd

import (
	"bytes"
	"context"
	"time"

	"github.com/refscope/refscope/pkg/fingerprint"
	"github.com/refscope/refscope/pkg/model"
	"github.com/refscope/refscope/pkg/sizeof"

	"github.com/spf13/cobra"
	yaml "gopkg.in/yaml.v2"
)

// sizeCmd measures the retained size of a value
var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Measure the retained size of a value",
	Long: `Measure the memory retained by a value, counting every block of shared
substructure exactly once.

The value is described in a JSON or YAML file. With --compare-with the
command reports the respective, combined and shared sizes of two values.`,
	Example: `% refscope size --input testdata/value.yaml
1.2MiB (1258291 bytes) in 1532 nodes, 48KiB shared`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		defer func(t0 time.Time) {
			cliUsage(t0, "size", err)
		}(time.Now())

		var value interface{}
		if err = decodeValueFile(refscopeFlags.size.Input, &value); err != nil {
			wrapFatalln("decode input value", err)
			return
		}

		scanner := sizeof.New(
			sizeof.Logger(mustGetLogger(refscopeFlags)),
			sizeof.MaxDepth(refscopeFlags.size.MaxDepth),
			sizeof.CountShared(refscopeFlags.size.CountShared),
			sizeof.WithMetrics(refscopeFlags.root.metrics.IsEnabled()),
		)

		if refscopeFlags.size.CompareWith != "" {
			var other interface{}
			if err = decodeValueFile(refscopeFlags.size.CompareWith, &other); err != nil {
				wrapFatalln("decode compared value", err)
				return
			}
			var comparison *model.Comparison
			comparison, err = scanner.Compare(value, other)
			if err != nil {
				wrapFatalln("compare values", err)
				return
			}
			printReport(comparison, comparison.String())
			return
		}

		var report *model.SizeReport
		report, err = scanner.Of(value)
		if err != nil {
			wrapFatalln("measure value", err)
			return
		}

		var fp fingerprint.Key
		fp, err = fingerprint.New().Of(value)
		if err != nil {
			wrapFatalln("fingerprint value", err)
			return
		}
		report.Fingerprint = fp.String()

		if refscopeFlags.size.Save {
			if err = saveReport(report); err != nil {
				wrapFatalln("archive report", err)
				return
			}
		}
		printReport(report, report.String())
	},
}

func printReport(v interface{}, oneliner string) {
	data, err := marshalOutput(refscopeFlags, v)
	if err != nil {
		wrapFatalln("render report", err)
		return
	}
	infoLogger.Println(oneliner)
	logStdOut("%s", string(data))
}

func saveReport(report *model.SizeReport) error {
	if err := model.ValidateSizeReport(*report); err != nil {
		return err
	}
	store, done, err := makeStore(refscopeFlags)
	if err != nil {
		return err
	}
	defer func() { _ = done() }()

	// archived descriptors are always serialized as YAML
	data, err := yaml.Marshal(report)
	if err != nil {
		return err
	}
	return store.Put(context.Background(),
		model.GetArchivePathToSizeReport(report.Fingerprint),
		bytes.NewReader(data), false)
}

func init() {
	requireFlags(sizeCmd,
		addInputFlag(sizeCmd),
	)
	addCompareWithFlag(sizeCmd)
	addMaxDepthFlag(sizeCmd)
	addCountSharedFlag(sizeCmd)
	addSaveFlag(sizeCmd)
	addStoreFlags(sizeCmd)
	addFormatFlag(sizeCmd)

	rootCmd.AddCommand(sizeCmd)
}

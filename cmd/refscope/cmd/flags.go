package cmd

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/refscope/refscope/pkg/mlogger"
	"github.com/refscope/refscope/pkg/storage"
	"github.com/refscope/refscope/pkg/storage/bdgr"
	"github.com/refscope/refscope/pkg/storage/localfs"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v2"
)

const (
	defaultStoreBackend = backendLocalFS
	defaultArchivePath  = ".refscope/archive"

	backendLocalFS = "localfs"
	backendBadger  = "badger"

	formatYAML = "yaml"
	formatJSON = "json"
)

type flagsT struct {
	size struct {
		Input       string
		CompareWith string
		MaxDepth    int
		CountShared bool
		Save        bool
	}
	snapshot struct {
		ID     string
		FromID string
		ToID   string
		Labels []string
	}
	watch struct {
		Interval   time.Duration
		LogEvery   time.Duration
		AllocMB    uint64
		HeapSysMB  uint64
		ProfileDir string
	}
	scope struct {
		Scenario  string
		Env       string
		Name      string
		WithSizes bool
	}
	store struct {
		Backend string
		Path    string
	}
	root struct {
		format   string
		logLevel string
		cpuProf  bool
		metrics  metricsFlags
	}
}

var refscopeFlags = flagsT{}

func addLogLevelFlag(cmd *cobra.Command) string {
	logLevel := "loglevel"
	cmd.PersistentFlags().StringVar(&refscopeFlags.root.logLevel, logLevel, mlogger.LogLevelInfo,
		"The logging level, one of: info, debug, none")
	return logLevel
}

func addCPUProfFlag(cmd *cobra.Command) string {
	cpuprof := "cpuprof"
	cmd.PersistentFlags().BoolVar(&refscopeFlags.root.cpuProf, cpuprof, false,
		"Toggle runtime profiling")
	return cpuprof
}

func addFormatFlag(cmd *cobra.Command) string {
	format := "format"
	cmd.PersistentFlags().StringVar(&refscopeFlags.root.format, format, formatYAML,
		"The output format for reports, one of: yaml, json")
	return format
}

func addInputFlag(cmd *cobra.Command) string {
	input := "input"
	cmd.Flags().StringVar(&refscopeFlags.size.Input, input, "",
		"Path to a JSON or YAML file describing the value to measure, \"-\" reads from stdin")
	return input
}

func addCompareWithFlag(cmd *cobra.Command) string {
	compareWith := "compare-with"
	cmd.Flags().StringVar(&refscopeFlags.size.CompareWith, compareWith, "",
		"Path to a second value: report the respective, combined and shared sizes of the pair")
	return compareWith
}

func addMaxDepthFlag(cmd *cobra.Command) string {
	maxDepth := "max-depth"
	cmd.Flags().IntVar(&refscopeFlags.size.MaxDepth, maxDepth, 0,
		"Bound the traversal depth. Truncated reports are flagged. 0 means unbounded")
	return maxDepth
}

func addCountSharedFlag(cmd *cobra.Command) string {
	countShared := "count-shared"
	cmd.Flags().BoolVar(&refscopeFlags.size.CountShared, countShared, false,
		"Account shared blocks once per reference instead of once overall")
	return countShared
}

func addSaveFlag(cmd *cobra.Command) string {
	save := "save"
	cmd.Flags().BoolVar(&refscopeFlags.size.Save, save, false,
		"Archive the report in the configured store, keyed by fingerprint")
	return save
}

func addSnapshotFlag(cmd *cobra.Command) string {
	snapshot := "snapshot"
	cmd.Flags().StringVar(&refscopeFlags.snapshot.ID, snapshot, "",
		"The id of an archived snapshot")
	return snapshot
}

func addSnapshotFromFlag(cmd *cobra.Command) string {
	from := "from"
	cmd.Flags().StringVar(&refscopeFlags.snapshot.FromID, from, "",
		"The id of the earlier snapshot")
	return from
}

func addSnapshotToFlag(cmd *cobra.Command) string {
	to := "to"
	cmd.Flags().StringVar(&refscopeFlags.snapshot.ToID, to, "",
		"The id of the later snapshot")
	return to
}

func addLabelsFlag(cmd *cobra.Command) string {
	labels := "label"
	cmd.Flags().StringSliceVar(&refscopeFlags.snapshot.Labels, labels, nil,
		"Free-form labels attached to the snapshot, may be repeated")
	return labels
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&refscopeFlags.store.Backend, "store", defaultStoreBackend,
		"The archive backend, one of: localfs, badger")
	cmd.PersistentFlags().StringVar(&refscopeFlags.store.Path, "path", defaultArchivePath,
		"The directory holding the archive")
}

func addWatchFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&refscopeFlags.watch.Interval, "interval", 50*time.Millisecond,
		"How often memory figures are polled")
	cmd.Flags().DurationVar(&refscopeFlags.watch.LogEvery, "log-every", 0,
		"Log current figures at this period, on top of growth events. 0 disables periodic logging")
	cmd.Flags().Uint64Var(&refscopeFlags.watch.AllocMB, "alloc-threshold", 0,
		"Dump pprof profiles when the live heap exceeds this figure, in MiB")
	cmd.Flags().Uint64Var(&refscopeFlags.watch.HeapSysMB, "heapsys-threshold", 0,
		"Dump pprof profiles when heap reserved from the system exceeds this figure, in MiB")
	cmd.Flags().StringVar(&refscopeFlags.watch.ProfileDir, "profile-dir", ".",
		"The directory receiving pprof dumps")
}

func addScenarioFlag(cmd *cobra.Command) string {
	scenario := "scenario"
	cmd.Flags().StringVar(&refscopeFlags.scope.Scenario, scenario, "",
		"Path to a YAML or JSON scenario declaring environments and binding operations")
	return scenario
}

func addEnvFlag(cmd *cobra.Command) string {
	env := "env"
	cmd.Flags().StringVar(&refscopeFlags.scope.Env, env, "",
		"The environment the lookup starts from")
	return env
}

func addNameFlag(cmd *cobra.Command) string {
	name := "name"
	cmd.Flags().StringVar(&refscopeFlags.scope.Name, name, "",
		"The binding name to resolve")
	return name
}

func addWithSizesFlag(cmd *cobra.Command) string {
	withSizes := "with-sizes"
	cmd.Flags().BoolVar(&refscopeFlags.scope.WithSizes, withSizes, false,
		"Annotate dumped bindings with their retained size")
	return withSizes
}

func requireFlags(cmd *cobra.Command, flags ...string) {
	for _, flag := range flags {
		err := cmd.MarkFlagRequired(flag)
		if err != nil {
			wrapFatalln(fmt.Sprintf("error attempting to mark the required flag %q", flag), err)
			return
		}
	}
}

func mustGetLogger(flags flagsT) *zap.Logger {
	logger, err := mlogger.GetLogger(flags.root.logLevel)
	if err != nil {
		wrapFatalln("failed to set log level "+flags.root.logLevel, err)
		return zap.NewNop()
	}
	return logger
}

// makeStore resolves the archive store from flags. The returned closer
// must be called when done.
func makeStore(flags flagsT) (storage.Store, func() error, error) {
	switch flags.store.Backend {
	case backendLocalFS:
		store, err := localfs.NewAtomic(afero.NewBasePathFs(afero.NewOsFs(), flags.store.Path))
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	case backendBadger:
		store := bdgr.New(flags.store.Path)
		if err := store.Initialize(); err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store backend %q", flags.store.Backend)
	}
}

// decodeValueFile loads an arbitrary value from a JSON or YAML file.
// "-" reads from stdin (assumed YAML unless it parses as JSON).
func decodeValueFile(pth string, target interface{}) error {
	var (
		data []byte
		err  error
	)
	if pth == "-" {
		data, err = ioutil.ReadAll(os.Stdin)
	} else {
		data, err = ioutil.ReadFile(pth)
	}
	if err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(pth), ".json") {
		return jsoniter.Unmarshal(data, target)
	}
	if err = yaml.Unmarshal(data, target); err == nil {
		return nil
	}
	// stdin or unknown extension: retry as JSON before giving up
	if jerr := jsoniter.Unmarshal(data, target); jerr == nil {
		return nil
	}
	return err
}

// marshalOutput renders a report according to the output format flag
func marshalOutput(flags flagsT, v interface{}) ([]byte, error) {
	switch flags.root.format {
	case formatJSON:
		return jsoniter.MarshalIndent(v, "", "  ")
	case "", formatYAML:
		return yaml.Marshal(v)
	default:
		return nil, fmt.Errorf("unsupported output format %q", flags.root.format)
	}
}

package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/tinyKV/cmd/util"
	"github.com/ValentinKolb/tinyKV/lib/store"
	"github.com/ValentinKolb/tinyKV/rpc/common"
	"github.com/cockroachdb/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for tinyKV servers",
		Long:    "Runs put, get, delete, scan and mixed workloads against the configured shard and reports throughput and latency percentiles. All keys are written to a dedicated column family.",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfFamily           = "__perf"
	perfKeyPrefix        = "__test"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfScanLimit        = 10
	perfSkip             = make([]string, 0)
)

// latency percentiles reported for every test
var perfPercentiles = []float64{0.5, 0.95, 0.99}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "scan-limit"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("The limit used by the scan test"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(1, viper.GetInt("keys"))
	perfNumThreads = max(1, viper.GetInt("threads"))
	perfScanLimit = max(1, viper.GetInt("scan-limit"))
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

// perfTest describes one workload
// op is called with the key for the current iteration and the iteration counter of the worker
type perfTest struct {
	name    string
	prefill bool
	op      func(key string, counter int) error
}

// perfResult is the outcome of one workload
type perfResult struct {
	bench       testing.BenchmarkResult
	percentiles []float64
	errors      int64
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for tinyKV servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	largeValue := strings.Repeat("x", perfLargeValueSizeKB*1024)

	tests := []perfTest{
		{
			name: "put",
			op: func(key string, _ int) error {
				return rpcStore.Put(perfFamily, key, "test")
			},
		},
		{
			name: "put-large",
			op: func(key string, _ int) error {
				return rpcStore.Put(perfFamily, key, largeValue)
			},
		},
		{
			name:    "get",
			prefill: true,
			op: func(key string, _ int) error {
				_, err := rpcStore.Get(perfFamily, key)
				return err
			},
		},
		{
			name:    "delete",
			prefill: true,
			op: func(key string, _ int) error {
				_, err := rpcStore.Delete(perfFamily, key)
				return err
			},
		},
		{
			name:    "scan",
			prefill: true,
			op: func(key string, _ int) error {
				_, err := rpcStore.Scan(perfFamily, key, perfScanLimit)
				return err
			},
		},
		{
			name:    "mixed",
			prefill: true,
			op: func(key string, counter int) error {
				var err error
				switch counter % 4 {
				case 0: // put
					err = rpcStore.Put(perfFamily, key, "test")
				case 1: // get
					_, err = rpcStore.Get(perfFamily, key)
				case 2: // scan
					_, err = rpcStore.Scan(perfFamily, key, perfScanLimit)
				case 3: // delete
					_, err = rpcStore.Delete(perfFamily, key)
				}
				return err
			},
		},
	}

	// Create results map
	registry := metrics.NewRegistry()
	results := make(map[string]perfResult)

	for _, test := range tests {
		if shouldSkip(test.name) {
			printResult(test.name, nil)
			continue
		}
		result := runPerfTest(test, registry)
		results[test.name] = result
		printResult(test.name, &result)
	}

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return errors.Wrap(err, "failed to export results to CSV")
		}
		fmt.Println("Export complete")
	}

	return nil
}

// runPerfTest runs a single workload with testing.Benchmark and records the latency of every operation
func runPerfTest(test perfTest, registry metrics.Registry) perfResult {
	timer := metrics.GetOrRegisterTimer(test.name+".latency", registry)
	failures := metrics.GetOrRegisterCounter(test.name+".errors", registry)

	bench := testing.Benchmark(func(b *testing.B) {
		// prepare keys
		getKey, iter := getKeys(test.name)

		// set keys
		if test.prefill {
			iter(func(k string) {
				if err := rpcStore.Put(perfFamily, k, "test"); err != nil {
					log.Printf("(%s) - error setting key: %v\n", test.name, err)
				}
			})
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if _, err := rpcStore.Delete(perfFamily, k); err != nil && !expectedError(err) {
					log.Printf("(%s) - error deleting key: %v\n", test.name, err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				err := test.op(getKey(counter), counter)
				timer.UpdateSince(start)

				if err != nil && !expectedError(err) {
					failures.Inc(1)
					log.Printf("(%s) - error performing operation: %v\n", test.name, err)
				}
				counter++
			}
		})
	})

	return perfResult{
		bench:       bench,
		percentiles: timer.Percentiles(perfPercentiles),
		errors:      failures.Count(),
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// expectedError reports whether err is a normal outcome of the workloads
// (keys deleted by another worker or by an earlier iteration)
func expectedError(err error) bool {
	return store.IsCode(err, store.RetCKeyNotFound) || store.IsCode(err, store.RetCFamilyNotFound)
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	return slices.Contains(perfSkip, test)
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result *perfResult) {
	if result == nil || result.bench.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p95=%s p99=%s\terrors=%d\n",
		test, nsPerOp, time.Duration(nsPerOp), opsPerSec,
		time.Duration(result.percentiles[0]), time.Duration(result.percentiles[1]), time.Duration(result.percentiles[2]),
		result.errors)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return errors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P95", "P99", "Errors",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"ShardID", "Serializer", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	// Write test results
	for test, result := range results {
		nsPerOp := math.Max(float64(result.bench.NsPerOp()), 1)
		opsPerSec := 1.0 / (nsPerOp / 1e9)

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			time.Duration(result.percentiles[0]).String(),
			time.Duration(result.percentiles[1]).String(),
			time.Duration(result.percentiles[2]).String(),
			strconv.FormatInt(result.errors, 10),
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.Transport.RetryCount),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			strconv.FormatUint(util.GetShardID(), 10),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write row for test %s", test)
		}
	}

	return nil
}

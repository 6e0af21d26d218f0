package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/sbinet/npyio"
	"github.com/spf13/viper"
	"github.com/swdee/go-vl53l0x"
	"github.com/swdee/go-vl53l0x/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupViper sets defaults and reads the optional vl53l0x.yaml config file
// and VL53L0X_* environment variables
func setupViper() error {

	viper.SetDefault("bus", "/dev/i2c-1")
	viper.SetDefault("address", int(vl53l0x.Address))
	viper.SetDefault("offset_file", "vl53l0x-offset.yaml")
	viper.SetDefault("budget_us", 0)
	viper.SetDefault("log_file", "")
	viper.SetDefault("verbose", false)

	viper.SetEnvPrefix("VL53L0X")
	viper.AutomaticEnv()

	viper.SetConfigName("vl53l0x")
	viper.AddConfigPath("/etc/vl53l0x")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// startLogger returns the driver logger, writing to a rotated log file if one
// is configured
func startLogger() *log.Logger {

	if !viper.GetBool("verbose") {
		return log.New(io.Discard, "", log.LstdFlags)
	}

	logger := log.New(os.Stderr, "vl53l0x: ", log.LstdFlags)

	if fname := viper.GetString("log_file"); fname != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   fname,
			MaxSize:    10, // megabytes after which new file is created
			MaxBackups: 4,
			MaxAge:     30, // days
			Compress:   true,
		})
	}

	return logger
}

func main() {

	mode := flag.String("mode", "measure", "One of measure, stream, calibrate, record")
	samples := flag.Int("n", 10, "Number of measurements")
	hz := flag.Float64("hz", 5, "Stream rate in measurements per second")
	target := flag.Int("target", 0, "Target distance in mm for calibrate mode")
	npyFile := flag.String("npy", "ranges.npy", "Output file for record mode")
	flag.String("b", "", "Path to I2C bus to use")
	flag.Int("a", 0, "I2C address of the sensor")
	flag.Uint("budget", 0, "Timing budget in microseconds")
	flag.String("offset", "", "Offset file")
	flag.Bool("v", false, "Verbose driver logging")
	flag.Parse()

	if err := setupViper(); err != nil {
		log.Fatal(err)
	}

	// flags given on the command line override the config file
	flagKeys := map[string]string{
		"b": "bus", "a": "address", "budget": "budget_us",
		"offset": "offset_file", "v": "verbose",
	}

	flag.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			viper.Set(key, f.Value.String())
		}
	})

	offsetFile := viper.GetString("offset_file")

	cfg, err := config.Load(offsetFile)

	if err != nil {
		log.Fatalf("Loading offset file: %v", err)
	}

	addr := uint8(viper.GetUint("address"))

	if cfg.Address != 0 && !isFlagSet("a") {
		addr = cfg.Address
	}

	sensor, err := vl53l0x.Open(viper.GetString("bus"), addr,
		vl53l0x.WithOffset(cfg.OffsetMM), vl53l0x.WithLogger(startLogger()))

	if err != nil {
		log.Fatal(err)
	}

	err = run(sensor, cfg, offsetFile, *mode, *samples, *hz, *target, *npyFile)
	sensor.Close()

	if err != nil {
		log.Fatal(err)
	}
}

// run applies the configured timing budget and runs the selected mode
func run(sensor *vl53l0x.VL53L0X, cfg config.Config, offsetFile, mode string,
	samples int, hz float64, target int, npyFile string) error {

	budget := uint32(viper.GetUint("budget_us"))

	if budget == 0 {
		budget = cfg.TimingBudgetUs
	}

	if budget != 0 {
		if _, err := sensor.SetTimingBudget(budget); err != nil {
			return fmt.Errorf("setting timing budget failed: %w", err)
		}
	}

	switch mode {
	case "measure":
		measure(sensor, samples)
		return nil
	case "stream":
		return stream(sensor, hz)
	case "calibrate":
		return calibrate(sensor, offsetFile, cfg, target, samples)
	case "record":
		return record(sensor, npyFile, samples)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

// isFlagSet reports whether the named flag was given on the command line
func isFlagSet(name string) bool {

	set := false

	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})

	return set
}

// measure prints n single-shot measurements
func measure(sensor *vl53l0x.VL53L0X, n int) {

	for i := 0; i < n; i++ {

		mm, err := sensor.Measure()

		if err != nil {
			log.Printf("Read error: %v", err)
		} else {
			fmt.Printf("Distance: %d mm\n", mm)
		}

		time.Sleep(200 * time.Millisecond)
	}
}

// stream measures continuously at the given rate until interrupted
func stream(sensor *vl53l0x.VL53L0X, hz float64) error {

	if hz <= 0 {
		return errors.New("stream rate must be positive")
	}

	ticker := time.NewTicker(time.Duration(float64(time.Second) / hz))
	defer ticker.Stop()

	for range ticker.C {

		mm, err := sensor.Measure()

		if errors.Is(err, vl53l0x.ErrTimeout) {
			log.Printf("Measurement timed out")
			continue
		}

		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		fmt.Printf("%s %d mm\n", time.Now().Format(time.RFC3339Nano), mm)
	}

	return nil
}

// calibrate derives the offset against a target and saves it
func calibrate(sensor *vl53l0x.VL53L0X, path string, cfg config.Config,
	target, n int) error {

	if target <= 0 {
		return errors.New("calibrate mode needs -target distance in mm")
	}

	offset, err := sensor.Calibrate(target, n)

	if err != nil {
		return fmt.Errorf("calibration failed: %w", err)
	}

	cfg.OffsetMM = offset

	if err := config.Save(path, cfg); err != nil {
		return fmt.Errorf("saving offset file: %w", err)
	}

	fmt.Printf("Offset: %d mm (saved to %s)\n", offset, path)

	return nil
}

// record writes n measurements to a NumPy .npy file
func record(sensor *vl53l0x.VL53L0X, path string, n int) error {

	ranges, err := sensor.MeasureN(n)

	if err != nil {
		return fmt.Errorf("read error after %d measurements: %w", len(ranges), err)
	}

	data := make([]int32, len(ranges))

	for i, r := range ranges {
		data[i] = int32(r)
	}

	f, err := os.Create(path)

	if err != nil {
		return err
	}

	defer f.Close()

	if err := npyio.Write(f, data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	fmt.Printf("Recorded %d measurements to %s\n", len(data), path)

	return nil
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/buzzerlab/tonedelay"
	"github.com/buzzerlab/tonedelay/compiler"
	"github.com/buzzerlab/tonedelay/gomidi"
	"github.com/buzzerlab/tonedelay/oto"
	"github.com/buzzerlab/tonedelay/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line with args and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("tonedelay", flag.ContinueOnError)
	flags.SetOutput(stderr)
	safe := flags.Bool("n", false, "Never overwrite files; if file already exists and would be overwritten, give an error.")
	list := flags.Bool("l", false, "Do not write files; just list files that would change instead.")
	toStdout := flags.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flags.Bool("h", false, "Show help.")
	jsonOut := flags.Bool("j", false, "Output the melody as .json file.")
	yamlOut := flags.Bool("y", false, "Output the melody as .yml file.")
	cOut := flags.Bool("c", false, "Output the melody as .h and .c sources declaring a melody_t.")
	tmplDir := flags.String("t", "", "When outputting C sources, use the templates in this directory instead of the standard templates.")
	midiOut := flags.Bool("m", false, "Output the melody as a .mid Standard MIDI File.")
	wavOut := flags.Bool("w", false, "Output the rendered melody as .wav file.")
	rawOut := flags.Bool("r", false, "Output the rendered melody as .raw stereo buffer.")
	pcm := flags.Bool("pcm", false, "Convert audio to 16-bit signed PCM when outputting.")
	play := flags.Bool("p", false, "Play the melodies through the default audio device.")
	outPath := flags.String("o", "", "Directory or filename where to write output. Extension is ignored. Directory and its parents are created if needed. By default, files are written to the working directory.")
	speed := flags.Float64("speed", 0, "Playback speed; durations are divided by this. Defaults to the preferences.")
	volume := flags.Float64("volume", -1, "Buzzer volume (PWM duty cycle) between 0 and 0.95. Defaults to the preferences.")
	debug := flags.Bool("debug", false, "Log every recognized statement.")
	versionFlag := flags.Bool("v", false, "Print version.")
	flags.Usage = func() { printUsage(flags) }
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *versionFlag {
		fmt.Fprintln(stdout, version.String())
		return 0
	}
	if *help {
		flags.Usage()
		return 0
	}
	logger := newLogger(stderr, *debug)
	defer logger.Sync()
	prefs := tonedelay.MakePreferences()
	if prefs.YmlError != nil {
		logger.Warn("ignoring preferences.yml", zap.Error(prefs.YmlError))
	}
	if *speed != 0 {
		prefs.Speed = *speed
	}
	if *volume >= 0 {
		prefs.SetVolume(*volume)
	}
	if err := prefs.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid settings: %v\n", err)
		return 1
	}
	report := !*jsonOut && !*yamlOut && !*cOut && !*midiOut && !*wavOut && !*rawOut && !*play // print the report when nothing else is asked for
	var comp *compiler.Compiler
	if *cOut {
		var err error
		if *tmplDir != "" {
			comp, err = compiler.NewFromTemplates(*tmplDir)
		} else {
			comp, err = compiler.New()
		}
		if err != nil {
			fmt.Fprintf(stderr, "error creating compiler: %v\n", err)
			return 1
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	var audioContext tonedelay.AudioContext
	if *play {
		otoContext, err := oto.NewContext(prefs.SampleRate)
		if err != nil {
			fmt.Fprintf(stderr, "could not acquire oto AudioContext: %v\n", err)
			return 1
		}
		audioContext = otoContext
		defer audioContext.Close()
	}
	scanner := tonedelay.Scanner{Logger: logger}
	// outputFile returns the path the output with the given extension is
	// written to for the input filename.
	outputFile := func(filename string, extension string) (string, error) {
		_, name := filepath.Split(filename)
		var dir string
		if *outPath != "" {
			// check if it's an already existing directory and the user just forgot trailing slash
			if info, err := os.Stat(*outPath); err == nil && info.IsDir() {
				dir = *outPath
			} else {
				outdir, outname := filepath.Split(*outPath)
				if outdir != "" {
					dir = outdir
				}
				if outname != "" {
					name = outname
				}
			}
		}
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return "", fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		return filepath.Join(dir, name), nil
	}
	output := func(filename string, extension string, contents []byte) error {
		if *toStdout {
			_, err := stdout.Write(contents)
			return err
		}
		f, err := outputFile(filename, extension)
		if err != nil {
			return err
		}
		original, err := os.ReadFile(f)
		if err == nil {
			if bytes.Equal(original, contents) {
				return nil // no need to update
			}
			if !*list && *safe {
				return fmt.Errorf("file %v would be overwritten", f)
			}
		}
		if *list {
			fmt.Fprintln(stdout, f)
			return nil
		}
		dir := filepath.Dir(f)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		logger.Debug("wrote file", zap.String("path", f))
		return nil
	}
	process := func(filename string) error {
		melody, err := scanner.ScanFile(filename)
		if err != nil {
			return err
		}
		if report {
			if err := tonedelay.WriteReport(stdout, melody); err != nil {
				return fmt.Errorf("could not write report: %v", err)
			}
		}
		if *cOut {
			header, err := outputFile(filename, ".h")
			if err != nil {
				return err
			}
			sources, err := comp.Melody(melody, filepath.Base(header))
			if err != nil {
				return fmt.Errorf("compiling melody failed: %v", err)
			}
			for _, extension := range slices.Sorted(maps.Keys(sources)) {
				if err := output(filename, extension, []byte(sources[extension])); err != nil {
					return fmt.Errorf("error outputting %v file: %v", extension, err)
				}
			}
		}
		if *jsonOut {
			jsonMelody, err := json.Marshal(melody)
			if err != nil {
				return fmt.Errorf("could not marshal the melody as json file: %v", err)
			}
			if err := output(filename, ".json", jsonMelody); err != nil {
				return fmt.Errorf("error outputting json file: %v", err)
			}
		}
		if *yamlOut {
			yamlMelody, err := yaml.Marshal(melody)
			if err != nil {
				return fmt.Errorf("could not marshal the melody as yaml file: %v", err)
			}
			if err := output(filename, ".yml", yamlMelody); err != nil {
				return fmt.Errorf("error outputting yaml file: %v", err)
			}
		}
		if *midiOut {
			mid, err := gomidi.SMF(melody.Name, melody.Notes(), prefs.Tempo)
			if err != nil {
				return fmt.Errorf("could not generate .mid file: %v", err)
			}
			if err := output(filename, ".mid", mid); err != nil {
				return fmt.Errorf("error outputting .mid file: %v", err)
			}
		}
		if !*wavOut && !*rawOut && !*play {
			return nil
		}
		buffer, err := tonedelay.Render(melody.Notes(), prefs)
		if err != nil {
			return fmt.Errorf("could not render melody: %v", err)
		}
		if *rawOut {
			raw, err := buffer.Raw(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(filename, ".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := buffer.Wav(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(filename, ".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *play {
			logger.Info("playing", zap.String("melody", melody.Name), zap.Float64("ms", melody.Duration()/prefs.Speed))
			if err := audioContext.Play(ctx, buffer); err != nil {
				return fmt.Errorf("error playing melody: %v", err)
			}
		}
		return nil
	}
	paths := flags.Args()
	if len(paths) == 0 {
		paths = []string{tonedelay.DefaultFilename}
	}
	retval := 0
	for _, param := range paths {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			files, err := filepath.Glob(filepath.Join(param, "*.ino"))
			if err != nil {
				fmt.Fprintf(stderr, "could not glob the path %v for ino files: %v\n", param, err)
				retval = 1
				continue
			}
			for _, file := range files {
				if err := process(file); err != nil {
					fmt.Fprintf(stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				fmt.Fprintf(stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	return retval
}

func newLogger(w io.Writer, debug bool) *zap.Logger {
	level := zapcore.WarnLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), level)
	return zap.New(core)
}

func printUsage(flags *flag.FlagSet) {
	fmt.Fprintf(flags.Output(), "tonedelay extracts tone frequencies and delay durations from buzzer sketches.\nUsage: %s [flags] [path ...]\nWith no path, %s is scanned. Directories are searched for .ino files.\n", flags.Name(), tonedelay.DefaultFilename)
	flags.PrintDefaults()
}

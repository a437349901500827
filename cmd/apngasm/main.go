// Command apngasm builds animated PNG files from still frames.
//
// Usage:
//
//	apngasm ugoira [options] <archive.zip>   Pixiv ugoira ZIP → APNG
//	apngasm frames [options] <frame.png>...  PNG frames → APNG
//	apngasm info [options] <file.png>        List the chunks of a PNG/APNG
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/setanarut/apngasm"
	"github.com/setanarut/apngasm/ugoira"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("apngasm: ")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "ugoira":
		err = runUgoira(os.Args[2:])
	case "frames":
		err = runFrames(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:], os.Stdout)
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "apngasm: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "apngasm: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  apngasm ugoira [options] <archive.zip>   Convert a Pixiv ugoira ZIP to APNG
  apngasm frames [options] <frame.png>...  Assemble PNG frames into an APNG
  apngasm info [options] <file.png>        List the chunks of a PNG or APNG

Run "apngasm <command> -h" for command-specific options.
`)
}

// verbose gates the stage messages printed with log.
var verbose bool

func logf(format string, args ...any) {
	if verbose {
		log.Printf(format, args...)
	}
}

// --- ugoira ---

func runUgoira(args []string) error {
	fs := flag.NewFlagSet("ugoira", flag.ContinueOnError)
	metaPath := fs.String("meta", "", "frame metadata JSON (default: animation.json inside the archive)")
	output := fs.String("o", "", "output path (default: <archive>.png)")
	loop := fs.Uint("loop", 0, "number of plays, 0 loops forever")
	fs.BoolVar(&verbose, "v", false, "print progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("ugoira: need exactly one archive\nUsage: apngasm ugoira [options] <archive.zip>")
	}
	input := fs.Arg(0)
	if err := checkLoop(*loop); err != nil {
		return err
	}

	a, err := ugoira.OpenArchive(input)
	if err != nil {
		return err
	}
	defer a.Close()

	var meta *ugoira.Metadata
	if *metaPath != "" {
		f, err := os.Open(*metaPath)
		if err != nil {
			return err
		}
		meta, err = ugoira.ReadMetadata(f)
		f.Close()
		if err != nil {
			return err
		}
	} else if meta, err = a.Metadata(); err != nil {
		return fmt.Errorf("%w (pass -meta)", err)
	}

	logf("retrieving %d frame images ...", len(meta.Frames))
	pngs, delays, err := a.Frames(meta)
	if err != nil {
		return err
	}

	asm := &apngasm.Assembler{LoopCount: uint32(*loop)}
	return assemble(asm, pngs, delays, outputPath(*output, input))
}

// --- frames ---

func runFrames(args []string) error {
	fs := flag.NewFlagSet("frames", flag.ContinueOnError)
	delay := fs.Int("delay", 100, "delay of every frame in milliseconds")
	delayList := fs.String("delays", "", "comma-separated per-frame delays in milliseconds (overrides -delay)")
	output := fs.String("o", "out.png", "output path")
	loop := fs.Uint("loop", 0, "number of plays, 0 loops forever")
	palette := fs.Bool("palette", false, "copy PLTE and tRNS from the first frame")
	fs.BoolVar(&verbose, "v", false, "print progress")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("frames: missing input files\nUsage: apngasm frames [options] <frame.png>...")
	}

	if err := checkLoop(*loop); err != nil {
		return err
	}

	delays, err := parseDelays(*delayList, *delay, fs.NArg())
	if err != nil {
		return err
	}

	pngs := make([][]byte, fs.NArg())
	for i, path := range fs.Args() {
		if pngs[i], err = os.ReadFile(path); err != nil {
			return err
		}
	}

	asm := &apngasm.Assembler{LoopCount: uint32(*loop), KeepPalette: *palette}
	return assemble(asm, pngs, delays, *output)
}

func checkLoop(n uint) error {
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("-loop %d exceeds %d", n, uint64(math.MaxUint32))
	}
	return nil
}

func parseDelays(list string, uniform, n int) ([]int, error) {
	if list == "" {
		delays := make([]int, n)
		for i := range delays {
			delays[i] = uniform
		}
		return delays, nil
	}
	fields := strings.Split(list, ",")
	delays := make([]int, len(fields))
	for i, f := range fields {
		d, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("frames: bad delay %q: %w", f, err)
		}
		delays[i] = d
	}
	return delays, nil
}

// assemble runs the chunk pipeline stage by stage so -v can report each one.
func assemble(asm *apngasm.Assembler, pngs [][]byte, delays []int, output string) error {
	logf("unpacking chunks ...")
	frames := make([]apngasm.FrameSet, len(pngs))
	for i, b := range pngs {
		f, err := apngasm.Parse(b)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		frames[i] = f
	}

	logf("animating chunks ...")
	chunks, err := asm.Assemble(frames, delays)
	if err != nil {
		return err
	}

	logf("repacking chunks ...")
	out, err := os.Create(output)
	if err != nil {
		return err
	}
	n, err := apngasm.WriteChunks(out, chunks)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(output)
		return err
	}
	logf("wrote %s (%d frames, %d bytes)", output, len(frames), n)
	return nil
}

func outputPath(output, input string) string {
	if output != "" {
		return output
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".png"
}

// --- info ---

func runInfo(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	verify := fs.Bool("crc", false, "verify stored chunk CRCs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("info: need exactly one file\nUsage: apngasm info [options] <file.png>")
	}

	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	r := apngasm.Reader{VerifyChecksums: *verify}
	chunks, err := r.Parse(b)
	if err != nil {
		return err
	}

	for _, c := range chunks {
		switch c.Type {
		case apngasm.TypeACTL:
			a, err := apngasm.ParseAnimationControl(c)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %8d  frames=%d plays=%d\n", c.Type, len(c.Data), a.NumFrames, a.NumPlays)
		case apngasm.TypeFCTL:
			f, err := apngasm.ParseFrameControl(c)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %8d  seq=%d size=%dx%d offset=%d,%d delay=%d/%d dispose=%d blend=%d\n",
				c.Type, len(c.Data), f.SequenceNumber, f.Width, f.Height, f.XOffset, f.YOffset,
				f.DelayNum, f.DelayDen, f.DisposeOp, f.BlendOp)
		case apngasm.TypeFDAT:
			seq, _ := apngasm.SequenceNumber(c)
			fmt.Fprintf(w, "%s %8d  seq=%d\n", c.Type, len(c.Data), seq)
		default:
			fmt.Fprintf(w, "%s %8d\n", c.Type, len(c.Data))
		}
	}
	return nil
}

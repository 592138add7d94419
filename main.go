//go:build !js

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gochip8/pkg/asm"
	"gochip8/pkg/cpu"
	"gochip8/pkg/display"
	"gochip8/pkg/grid"
	"gochip8/pkg/rom"
)

func main() {
	inPath := flag.String("in", "", "input assembly file path")
	outPath := flag.String("out", "", "output binary file path (default: input with .ch8 extension)")
	runProgram := flag.Bool("run", false, "run the assembled program headless")
	runBinPath := flag.String("run-bin", "", "run an existing program image headless")
	disasmPath := flag.String("disasm", "", "disassemble a program image")
	steps := flag.Int("steps", 10000, "maximum instructions for a headless run")
	showScreen := flag.Bool("screen", false, "print the screen after a headless run")
	flag.Parse()

	if *runProgram && *runBinPath != "" {
		fmt.Fprintln(os.Stderr, "use either -run or -run-bin, not both")
		os.Exit(2)
	}

	if *disasmPath != "" {
		if err := disassembleFile(os.Stdout, *disasmPath); err != nil {
			fmt.Fprintf(os.Stderr, "disassembly failed: %v\n", err)
			os.Exit(1)
		}
	}

	assembledOutput := ""
	if *inPath != "" {
		source, err := os.ReadFile(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to read input file %q: %v\n", *inPath, err)
			os.Exit(1)
		}

		code, _, err := asm.Assemble(string(source))
		if err != nil {
			fmt.Fprintf(os.Stderr, "assembly failed: %v\n", err)
			os.Exit(1)
		}

		output := *outPath
		if output == "" {
			output = defaultOutputPath(*inPath)
		}

		if err := writeBinary(output, code); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write binary file %q: %v\n", output, err)
			os.Exit(1)
		}

		fmt.Printf("assembled %d bytes -> %s\n", len(code), output)
		assembledOutput = output
	}

	if *inPath == "" && *runBinPath == "" && !*runProgram && *disasmPath == "" {
		fmt.Fprintln(os.Stderr, "nothing to do: provide -in to assemble, -disasm <file> to list a program, or -run-bin <file> to run one")
		flag.Usage()
		os.Exit(2)
	}

	runTarget := ""
	switch {
	case *runBinPath != "":
		runTarget = *runBinPath
	case *runProgram:
		if assembledOutput == "" {
			fmt.Fprintln(os.Stderr, "-run requires -in, or use -run-bin <file>")
			os.Exit(2)
		}
		runTarget = assembledOutput
	default:
		return
	}

	if err := runBinary(os.Stdout, runTarget, *steps, *showScreen); err != nil {
		fmt.Fprintf(os.Stderr, "run failed for %q: %v\n", runTarget, err)
		os.Exit(1)
	}
}

func defaultOutputPath(inPath string) string {
	return rom.SiblingPath(inPath, ".ch8")
}

func writeBinary(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func disassembleFile(w io.Writer, path string) error {
	image, err := rom.Load(path)
	if err != nil {
		return err
	}
	for _, line := range asm.DisassembleProgram(image) {
		fmt.Fprintln(w, line)
	}
	return nil
}

// runHeadless executes up to maxSteps instructions. A jump to its own
// address is the usual way a CHIP-8 program ends, so it stops the run.
func runHeadless(vm *cpu.CPU, maxSteps int) (halted bool, err error) {
	for i := 0; i < maxSteps; i++ {
		if in, err := vm.Peek(); err == nil && in.Kind == cpu.KindJP && in.NNN == vm.PC {
			return true, nil
		}
		if _, err := vm.Step(); err != nil {
			return false, err
		}
	}
	return false, nil
}

func runBinary(w io.Writer, path string, maxSteps int, showScreen bool) error {
	image, err := rom.Load(path)
	if err != nil {
		return err
	}

	vm, err := cpu.New(image)
	if err != nil {
		return err
	}

	halted, err := runHeadless(vm, maxSteps)
	if err != nil {
		return err
	}

	state := "step limit"
	if halted {
		state = "halted"
	}
	fmt.Fprintf(w, "run complete (%s, %s after %d steps): PC=0x%03X I=0x%03X SP=%d DT=%d ST=%d\n",
		path, state, vm.Steps, vm.PC, vm.I, vm.SP, vm.Delay, vm.Sound)
	regs := make([]string, len(vm.V))
	for i, v := range vm.V {
		regs[i] = fmt.Sprintf("V%X=%02X", i, v)
	}
	fmt.Fprintln(w, strings.Join(regs, " "))

	if showScreen {
		fmt.Fprint(w, asciiScreen(vm.Snapshot()))
	}
	return nil
}

// asciiScreen renders the frame with '#' for lit cells.
func asciiScreen(frame display.Frame) string {
	var sb strings.Builder
	for i, on := range frame {
		if on {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
		if x, _ := grid.GetGridCoords(i, display.Width); x == display.Width-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

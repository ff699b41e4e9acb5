// trtool is a CLI utility for inspecting TR1 level data.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"maps"
	"math/bits"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/tr1-engine/internal/config"
	"github.com/Faultbox/tr1-engine/internal/engine/animation"
	"github.com/Faultbox/tr1-engine/internal/scenario"
	"github.com/Faultbox/tr1-engine/pkg/floordata"
	"github.com/Faultbox/tr1-engine/pkg/loader"
)

var spewConfig = &spew.ConfigState{Indent: "  ", DisableCapacities: true, DisablePointerAddresses: true}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "floordata", "fd":
		cmdFloorData(args)
	case "secrets":
		cmdSecrets(args)
	case "anim":
		cmdAnim(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`trtool - TR1 level data utility

Usage:
  trtool <command> [options]

Commands:
  floordata [-file f] [-offset n] [words...]  Decode floor data chunks
  secrets <scenario.yaml>                     List the secrets of a level
  anim [-raw] [-dump] <file>                  Check animation records
  config [-write] [-o path]                   Print or write the default config

Examples:
  trtool floordata 0x8004 0x3E00 0x0002 0xA800
  trtool floordata -file floordata.bin -offset 120
  trtool secrets scenario.yaml
  trtool anim -raw -dump anims.bin
  trtool config -write`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdFloorData(args []string) {
	fs := flag.NewFlagSet("floordata", flag.ExitOnError)
	file := fs.String("file", "", "Read a counted floor data array from a binary file")
	offset := fs.Int("offset", 0, "Word offset of the first chunk")
	dump := fs.Bool("dump", false, "Dump Go values instead of yaml")
	fs.Parse(args)

	var fd floordata.FloorData
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			fail(err)
		}
		defer f.Close()
		if fd, err = loader.ReadFloorData(bufio.NewReader(f)); err != nil {
			fail(err)
		}
	} else {
		var err error
		if fd, err = parseWords(fs.Args()); err != nil {
			fail(err)
		}
	}
	if *offset < 0 || *offset >= len(fd) {
		fail(fmt.Errorf("offset %d outside %d floor data words", *offset, len(fd)))
	}

	chunks := floordata.Describe(floordata.NewRef(fd, *offset))
	if *dump {
		spewConfig.Dump(chunks)
		return
	}
	out, err := yaml.Marshal(chunks)
	if err != nil {
		fail(err)
	}
	os.Stdout.Write(out)
}

func parseWords(args []string) (floordata.FloorData, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no floor data words given")
	}
	fd := make(floordata.FloorData, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(strings.TrimSuffix(a, ","), 0, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid word %q: %w", a, err)
		}
		fd = append(fd, floordata.Value(v))
	}
	return fd, nil
}

func cmdSecrets(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trtool secrets <scenario.yaml>")
		os.Exit(1)
	}
	sc, err := scenario.LoadFile(args[0])
	if err != nil {
		fail(err)
	}
	lvl, err := sc.Level()
	if err != nil {
		fail(err)
	}

	for _, room := range lvl.Rooms {
		for x := range room.SectorCountX {
			for z := range room.SectorCountZ {
				if mask := floordata.GetSecretsMask(room.SectorAt(x, z).FloorData); mask != 0 {
					fmt.Printf("  room %-3d sector (%d,%d)  %016b\n", room.Index, x, z, mask)
				}
			}
		}
	}
	mask := lvl.SecretsMask()
	fmt.Printf("Secrets: %d (mask %#04x)\n", bits.OnesCount16(mask), mask)
}

func cmdAnim(args []string) {
	fs := flag.NewFlagSet("anim", flag.ExitOnError)
	raw := fs.Bool("raw", false, "Read a binary animation block instead of a scenario")
	dump := fs.Bool("dump", false, "Dump the raw records")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: trtool anim [-raw] [-dump] <file>")
		os.Exit(1)
	}

	var ad *loader.AnimationData
	if *raw {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fail(err)
		}
		defer f.Close()
		if ad, err = loader.ReadAnimationData(bufio.NewReader(f)); err != nil {
			fail(err)
		}
	} else {
		sc, err := scenario.LoadFile(fs.Arg(0))
		if err != nil {
			fail(err)
		}
		if ad, err = sc.AnimationData(); err != nil {
			fail(err)
		}
	}

	if *dump {
		spewConfig.Dump(ad.Animations, ad.Transitions, ad.TransitionCases, ad.Models)
	}

	lib, err := animation.Load(ad)
	if err != nil {
		fail(err)
	}

	fmt.Printf("Animations: %d\n", len(lib.Animations))
	for _, a := range lib.Animations {
		fmt.Printf("  %-4d state %-3d frames [%d, %d] stretch %d speed %d -> %d:%d  transitions %d  commands %d\n",
			a.ID, a.StateID, a.FirstFrame, a.LastFrame, a.StretchFactor, a.Speed.Units(),
			a.NextAnimation.ID, a.NextFrame, len(a.Transitions), len(a.Commands))
	}
	fmt.Printf("Models: %d\n", len(lib.Models))
	for _, id := range slices.Sorted(maps.Keys(lib.Models)) {
		m := lib.Models[id]
		first := -1
		if m.Animation != nil {
			first = m.Animation.ID
		}
		fmt.Printf("  object %-4d bones %-3d stack depth %d first animation %d\n", id, m.BoneCount(), m.StackDepth(), first)
	}
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	write := fs.Bool("write", false, "Write to the user config directory")
	out := fs.String("o", "", "Write to this path")
	fs.Parse(args)

	cfg := config.Default()
	switch {
	case *out != "":
		if err := cfg.SaveTo(*out); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", *out)
	case *write:
		if err := cfg.SaveDefault(); err != nil {
			fail(err)
		}
		fmt.Printf("Wrote %s\n", config.DefaultPath())
	default:
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fail(err)
		}
		os.Stdout.Write(data)
	}
}

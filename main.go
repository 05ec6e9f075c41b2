//go:build !(js && wasm)

package main

import (
	"fmt"
	"os"

	"github.com/voxelsplace/isonets/utils"
)

func usage() {
	fmt.Println("Usage: isonets <command> [args]")
	fmt.Println("Commands:")
	fmt.Println("  generate output.isopack [config.yaml]   (build every chunk of the world into a pack)")
	fmt.Println("  pack2glb input.isopack output.glb       (convert a pack to one .glb, one node per chunk)")
	fmt.Println("  unpack input.isopack output_dir         (write one .glb per non-empty chunk)")
	fmt.Println("  config [output.yaml]                    (print or write the default configuration)")
}

func fail(err error) {
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		if len(os.Args) != 3 && len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		cfgPath := ""
		if len(os.Args) == 4 {
			cfgPath = os.Args[3]
		}
		if err := utils.RunGenerate(cfgPath, os.Args[2]); err != nil {
			fail(err)
		}
	case "pack2glb":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunPack2GLB(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	case "unpack":
		if len(os.Args) != 4 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunUnpack(os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
	case "config":
		out := ""
		if len(os.Args) == 3 {
			out = os.Args[2]
		} else if len(os.Args) != 2 {
			usage()
			os.Exit(1)
		}
		if err := utils.RunDefaultConfig(out); err != nil {
			fail(err)
		}
		if out == "" {
			return
		}
	default:
		usage()
		os.Exit(1)
	}

	fmt.Println("Operation completed!")
}

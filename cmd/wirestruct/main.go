// Command wirestruct exercises the kernel against the demonstration
// formats in examples/ — a small CLI in the teacher's own style
// (go/cmd/main.go): stdlib flag, stdlib log, no cobra.
package main

import (
	"encoding/hex"
	"flag"
	"log"
	"os"

	"github.com/wirestruct/wirestruct"
	"github.com/wirestruct/wirestruct/examples"
)

func main() {
	var (
		format    = flag.String("format", "tlv", "Demonstration format to run: tlv or tarheader")
		inputPath = flag.String("input", "", "Path to a binary file to parse; reads stdin if empty")
		emit      = flag.Bool("emit", false, "Emit a sample value instead of parsing input")
	)
	flag.Parse()

	if *emit {
		if err := runEmit(*format); err != nil {
			log.Fatalf("emit: %s", err.Error())
		}
		return
	}

	data, err := readInput(*inputPath)
	if err != nil {
		log.Fatalf("reading input: %s", err.Error())
	}

	var spec wirestruct.Spec
	switch *format {
	case "tlv":
		spec = examples.TLVRecord
	case "tarheader":
		spec = examples.TarHeader
	default:
		log.Fatalf("unknown format %q", *format)
	}

	value, err := wirestruct.Parse(spec, data, nil)
	if err != nil {
		log.Fatalf("parse: %s", err.Error())
	}

	rec, ok := value.(*wirestruct.Record)
	if !ok {
		log.Fatalf("unexpected parse result of type %T", value)
	}
	for _, name := range rec.Fields() {
		log.Printf("%s = %v", name, rec.Get(name))
	}
}

func runEmit(format string) error {
	var spec wirestruct.Spec
	var value any

	switch format {
	case "tlv":
		rec := wirestruct.NewRecord(examples.TLVRecord)
		rec.With("tag", int64(1)).With("body", int64(0x1234))
		spec, value = examples.TLVRecord, rec
	case "tarheader":
		value = examples.NewTarHeaderRecord("hello.txt", 0o644, []byte("hello, wirestruct"))
		spec = examples.TarHeader
	default:
		log.Fatalf("unknown format %q", format)
	}

	stream, err := wirestruct.Emit(spec, value, nil)
	if err != nil {
		return err
	}
	bs, ok := stream.(*wirestruct.ByteStream)
	if !ok {
		log.Fatalf("unexpected stream of type %T", stream)
	}
	os.Stdout.WriteString(hex.Dump(bs.Bytes()))
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return os.ReadFile("/dev/stdin")
	}
	return os.ReadFile(path)
}

// Command mp4dump opens an MP4/MOV file and prints its track and metadata
// summary.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wwl33695/libmp4"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <file.mp4>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	d, err := mp4.OpenFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening file: %v\n", err)
		os.Exit(1)
	}
	defer d.Close()

	info := d.MediaInfo()
	fmt.Printf("movie: timescale=%d duration=%d (%dus) created=%dus modified=%dus\n",
		info.Timescale, info.Duration, info.DurationUs, info.CreationUs, info.ModifiedUs)

	for i := 0; i < d.TrackCount(); i++ {
		t := d.TrackInfo(i)
		fmt.Printf("track[%d]: id=%d type=%s codec=%v timescale=%d samples=%d",
			i, t.TrackID, t.Type, t.Codec, t.Timescale, t.SampleCount())
		if t.Type == mp4.TrackVideo {
			fmt.Printf(" %dx%d", t.Width, t.Height)
		}
		if t.HandlerName != "" {
			fmt.Printf(" handler=%q", t.HandlerName)
		}
		fmt.Println()
	}

	if chapters := d.Chapters(); len(chapters) > 0 {
		fmt.Println("chapters:")
		for _, c := range chapters {
			fmt.Printf("  [%d] %dus %q\n", c.Index, c.TimestampUs, c.Name)
		}
	}

	if entries := d.MetadataStrings(); len(entries) > 0 {
		fmt.Println("metadata:")
		for _, e := range entries {
			fmt.Printf("  %s: %s\n", e.Key, e.Value)
		}
	}

	if cover := d.MetadataCover(); len(cover) > 0 {
		fmt.Printf("cover art: %d bytes\n", len(cover))
	}
}

package encode

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/andrewarrow/weave/internal/pipelineerr"
	"github.com/andrewarrow/weave/internal/shapes"
)

// Chapter is one ffmetadata [CHAPTER] block.
type Chapter struct {
	StartMS int64
	EndMS   int64
	Title   string
}

// BuildChapters derives one chapter per slide segment whose visible span
// exceeds 0.25s and whose start is strictly before duration, titled
// "Slide {k}" or "Screen sharing {k}" depending on whether the slide's href
// mentions a deskshare capture.
func BuildChapters(slides []shapes.Slide, duration float64) []Chapter {
	var chapters []Chapter
	slideNum, deskNum := 1, 1

	for _, s := range slides {
		if s.End-s.Begin <= 0.25 {
			continue
		}
		if s.Begin >= duration {
			continue
		}

		var title string
		if strings.Contains(s.Href, "deskshare") {
			title = fmt.Sprintf("Screen sharing %d", deskNum)
			deskNum++
		} else {
			title = fmt.Sprintf("Slide %d", slideNum)
			slideNum++
		}

		end := s.End
		if end > duration {
			end = duration
		}

		chapters = append(chapters, Chapter{
			StartMS: int64(s.Begin * 1000),
			EndMS:   int64(end * 1000),
			Title:   title,
		})
	}

	return chapters
}

// WriteFFMetadata renders chapters as an ffmetadata text file at path.
func WriteFFMetadata(path string, chapters []Chapter) error {
	var sb strings.Builder
	sb.WriteString(";FFMETADATA1\n")
	for _, c := range chapters {
		sb.WriteString("[CHAPTER]\n")
		sb.WriteString("TIMEBASE=1/1000\n")
		sb.WriteString("START=" + strconv.FormatInt(c.StartMS, 10) + "\n")
		sb.WriteString("END=" + strconv.FormatInt(c.EndMS, 10) + "\n")
		sb.WriteString("title=" + c.Title + "\n")
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return pipelineerr.Output(path, err)
	}
	return nil
}

// RemuxWithChapters re-muxes src into dst with the chapter metadata
// attached, via `-codec copy` so no re-encoding happens on this pass.
func RemuxWithChapters(ctx context.Context, client Client, src, metadataPath, dst string) error {
	args := []string{
		"-y",
		"-i", src,
		"-i", metadataPath,
		"-map_metadata", "1",
		"-codec", "copy",
		dst,
	}
	return client.Run(ctx, args)
}

// Caption is one optional subtitle track to mux in alongside the chapter
// pass.
type Caption struct {
	Locale     string
	LocaleName string
	VTTPath    string
}

// RemuxWithCaptions re-muxes src into dst, mapping the main video/audio
// streams plus one mov_text subtitle stream per caption, each tagged with
// its language from the caption metadata.
func RemuxWithCaptions(ctx context.Context, client Client, src, metadataPath, dst string, captions []Caption) error {
	args := []string{"-y", "-i", src}
	for _, c := range captions {
		args = append(args, "-i", c.VTTPath)
	}
	args = append(args, "-i", metadataPath)

	args = append(args, "-map", "0", "-map_metadata", fmt.Sprintf("%d", len(captions)+1))
	for i, c := range captions {
		args = append(args, "-map", fmt.Sprintf("%d", i+1))
		args = append(args, fmt.Sprintf("-metadata:s:s:%d", i), fmt.Sprintf("language=%s", c.Locale))
		args = append(args, fmt.Sprintf("-metadata:s:s:%d", i), fmt.Sprintf("title=%s", c.LocaleName))
	}
	args = append(args, "-codec", "copy", "-codec:s", "mov_text", dst)

	return client.Run(ctx, args)
}

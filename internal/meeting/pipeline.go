// Package meeting wires every ingest, layout, and emission stage into the
// single linear pipeline the CLI invokes: ingest the timelines, merge
// breakpoints, emit whiteboard frames and the cursor and chat sprites,
// assemble and run the main encode, then the chapter pass, then commit.
package meeting

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/andrewarrow/weave/internal/breakpoints"
	"github.com/andrewarrow/weave/internal/chat"
	"github.com/andrewarrow/weave/internal/config"
	"github.com/andrewarrow/weave/internal/cursor"
	"github.com/andrewarrow/weave/internal/encode"
	"github.com/andrewarrow/weave/internal/fontmetric"
	"github.com/andrewarrow/weave/internal/frame"
	"github.com/andrewarrow/weave/internal/metadata"
	"github.com/andrewarrow/weave/internal/panzoom"
	"github.com/andrewarrow/weave/internal/pipelineerr"
	"github.com/andrewarrow/weave/internal/scratch"
	"github.com/andrewarrow/weave/internal/shapes"
)

// Sources names the on-disk artifacts one meeting publishes. Optional
// fields left empty disable their feature (desk-share, chat, captions)
// rather than erroring.
type Sources struct {
	Dir            string // published artifact root
	ShapesSVG      string // shapes.svg, required
	PanzoomsXML    string // panzooms.xml, required
	CursorXML      string // cursor.xml, required
	ChatXML        string // slides_new.xml chattimeline, optional
	DeskshareVideo string // optional
	WebcamsVideo   string // required
	BackgroundLoop string // required, looping background plate
	MetadataXML    string // metadata.xml, required
	CaptionsJSON   string // captions.json, optional
}

// Outcome reports what the pipeline produced.
type Outcome struct {
	OutputPath string
	Chapters   []encode.Chapter
}

// Pipeline runs the full compose operation for one meeting.
type Pipeline struct {
	Config       config.Config
	ScratchBase  string
	RecordingDir string // where the committed MP4 and rewritten metadata.xml live
	Font         fontmetric.Client
	Encoder      encode.Client
}

// Run executes every stage in order and commits the finished MP4 into
// p.RecordingDir, rewriting metadata.xml on success. Any stage failure
// leaves the scratch tree in place (Tree.Rollback) and returns a wrapped
// pipelineerr.
func (p Pipeline) Run(ctx context.Context, meetingID string, src Sources) (*Outcome, error) {
	tree, err := scratch.New(p.ScratchBase, meetingID)
	if err != nil {
		return nil, err
	}

	meta, err := metadata.Read(src.MetadataXML)
	if err != nil {
		tree.Rollback()
		return nil, err
	}
	duration := meta.DurationSeconds()

	shapeDoc, err := shapes.Ingest(ctx, src.ShapesSVG, shapes.Options{
		PublishedRoot: src.Dir,
		FileRefs:      p.Config.FFmpegReferenceSupport,
		Font:          p.Font,
	})
	if err != nil {
		tree.Rollback()
		return nil, err
	}

	shapesModifiedPath := tree.Path("shapes_modified.svg")
	if err := os.WriteFile(shapesModifiedPath, shapeDoc.Normalized, 0o644); err != nil {
		tree.Rollback()
		return nil, pipelineerr.Output(shapesModifiedPath, err)
	}

	panzooms, err := panzoom.Ingest(src.PanzoomsXML)
	if err != nil {
		tree.Rollback()
		return nil, err
	}

	cursorSamples, err := cursor.Ingest(src.CursorXML)
	if err != nil {
		tree.Rollback()
		return nil, err
	}

	allTimes := append([]float64{}, shapeDoc.Breakpoints...)
	allTimes = append(allTimes, panzoom.Breakpoints(panzooms)...)
	merged := breakpoints.Merge(allTimes, duration)

	frameRes, err := frame.Emit(merged, shapeDoc.Slides, shapeDoc.Annotations, panzooms, p.Config, tree.FramesDir())
	if err != nil {
		tree.Rollback()
		return nil, err
	}
	playlistPath := tree.Path("timestamps/whiteboard_timestamps")
	if err := os.WriteFile(playlistPath, []byte(frameRes.Playlist), 0o644); err != nil {
		tree.Rollback()
		return nil, pipelineerr.Output(playlistPath, err)
	}

	cursorCmds, err := cursor.Project(cursorSamples, panzooms, p.Config)
	if err != nil {
		tree.Rollback()
		return nil, err
	}
	cursorSpritePath := tree.Path("cursor/cursor.svg")
	cursorSprite, err := cursor.Sprite(p.Config)
	if err != nil {
		tree.Rollback()
		return nil, err
	}
	if err := os.WriteFile(cursorSpritePath, cursorSprite, 0o644); err != nil {
		tree.Rollback()
		return nil, pipelineerr.Output(cursorSpritePath, err)
	}
	cursorTimestampsPath := tree.Path("timestamps/cursor_timestamps")
	if err := writeLines(cursorTimestampsPath, cursor.FormatLines(cursorCmds)); err != nil {
		tree.Rollback()
		return nil, err
	}

	in := encode.Inputs{
		BackgroundLoop:     src.BackgroundLoop,
		WhiteboardPlaylist: playlistPath,
		CursorSprite:       cursorSpritePath,
		CursorTimestamps:   cursorTimestampsPath,
		Webcams:            src.WebcamsVideo,
		Duration:           duration,
		MeetingName:        meta.Meeting,
		OutputPath:         tree.Path("composite.mp4"),
	}

	if src.DeskshareVideo != "" && !p.Config.HideDeskshare {
		in.Deskshare = src.DeskshareVideo
	}

	if src.ChatXML != "" && !p.Config.HideChat {
		messages, err := chat.Ingest(src.ChatXML)
		if err != nil {
			tree.Rollback()
			return nil, err
		}
		engine := chat.NewEngine(p.Config, p.Config.HideChatNames, time.Now().UnixNano())
		for _, m := range messages {
			engine.Add(m)
		}
		if !engine.Empty() {
			chatSpriteData, err := engine.SVG()
			if err != nil {
				tree.Rollback()
				return nil, err
			}
			chatSpritePath := tree.Path("chats/chat.svg")
			if err := os.WriteFile(chatSpritePath, chatSpriteData, 0o644); err != nil {
				tree.Rollback()
				return nil, pipelineerr.Output(chatSpritePath, err)
			}
			chatTimestampsPath := tree.Path("timestamps/chat_timestamps")
			if err := writeLines(chatTimestampsPath, chat.FormatCommandLines(engine.Commands())); err != nil {
				tree.Rollback()
				return nil, err
			}
			in.ChatSprite = chatSpritePath
			in.ChatTimestamps = chatTimestampsPath
		}
	}

	args, err := encode.Assemble(p.Config, in)
	if err != nil {
		tree.Rollback()
		return nil, err
	}
	if err := p.Encoder.Run(ctx, args); err != nil {
		tree.Rollback()
		return nil, err
	}

	chapters := encode.BuildChapters(shapeDoc.Slides, duration)
	ffmetadataPath := tree.Path("meeting_metadata")
	if err := encode.WriteFFMetadata(ffmetadataPath, chapters); err != nil {
		tree.Rollback()
		return nil, err
	}

	chaptered := tree.Path("chaptered.mp4")
	final := in.OutputPath

	if src.CaptionsJSON != "" && p.Config.CaptionSupport {
		entries, err := metadata.ReadCaptionIndex(src.CaptionsJSON)
		if err != nil {
			tree.Rollback()
			return nil, err
		}
		resolved := metadata.ResolveCaptionPaths(src.Dir, entries)
		if len(resolved) > 0 {
			captions := make([]encode.Caption, len(resolved))
			for i, e := range resolved {
				captions[i] = encode.Caption{Locale: e.Locale, LocaleName: e.LocaleName, VTTPath: e.File}
			}
			if err := encode.RemuxWithCaptions(ctx, p.Encoder, final, ffmetadataPath, chaptered, captions); err != nil {
				tree.Rollback()
				return nil, err
			}
			final = chaptered
		} else {
			if err := encode.RemuxWithChapters(ctx, p.Encoder, final, ffmetadataPath, chaptered); err != nil {
				tree.Rollback()
				return nil, err
			}
			final = chaptered
		}
	} else {
		if err := encode.RemuxWithChapters(ctx, p.Encoder, final, ffmetadataPath, chaptered); err != nil {
			tree.Rollback()
			return nil, err
		}
		final = chaptered
	}

	dest := filepath.Join(p.RecordingDir, "meeting.mp4")
	if err := tree.Commit(final, dest); err != nil {
		return nil, err
	}

	if err := metadata.RewriteSuccess(filepath.Join(p.RecordingDir, "metadata.xml"), meta, dest); err != nil {
		return nil, err
	}

	return &Outcome{OutputPath: dest, Chapters: chapters}, nil
}

func writeLines(path string, lines []string) error {
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return pipelineerr.Output(path, err)
	}
	return nil
}

package usecase

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/semmidev/ckptsync/internal/domain"

	. "github.com/smartystreets/goconvey/convey"
)

func writeFiles(dir string, files map[string]string) {
	for name, content := range files {
		So(os.WriteFile(filepath.Join(dir, name), []byte(content), 0644), ShouldBeNil)
	}
}

func TestReadCheckpoint(t *testing.T) {
	Convey("Given a model directory", t, func() {
		tempDir, err := os.MkdirTemp("", "discover_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("When the marker names model.ckpt-12345", func() {
			writeFiles(tempDir, map[string]string{
				"checkpoint": "model.ckpt-12345\nall_model_checkpoint_paths: \"model.ckpt-999\"\n",
			})

			ckpt, err := ReadCheckpoint(tempDir)

			Convey("It should read the first digit run of the first line", func() {
				So(err, ShouldBeNil)
				So(ckpt, ShouldEqual, domain.Checkpoint("12345"))
			})
		})

		Convey("When the marker has no trailing newline", func() {
			writeFiles(tempDir, map[string]string{"checkpoint": "ckpt-8"})

			ckpt, err := ReadCheckpoint(tempDir)

			So(err, ShouldBeNil)
			So(ckpt, ShouldEqual, domain.Checkpoint("8"))
		})

		Convey("When the first line has no digits", func() {
			writeFiles(tempDir, map[string]string{"checkpoint": "latest\nmodel.ckpt-5\n"})

			_, err := ReadCheckpoint(tempDir)

			Convey("It should not look at later lines", func() {
				So(errors.Is(err, domain.ErrCheckpointFormat), ShouldBeTrue)
			})
		})

		Convey("When the marker is absent", func() {
			_, err := ReadCheckpoint(tempDir)

			Convey("It should return ErrCheckpointFormat wrapping the cause", func() {
				So(errors.Is(err, domain.ErrCheckpointFormat), ShouldBeTrue)
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})

		Convey("When the marker is a directory", func() {
			So(os.Mkdir(filepath.Join(tempDir, "checkpoint"), 0755), ShouldBeNil)

			_, err := ReadCheckpoint(tempDir)
			So(errors.Is(err, domain.ErrCheckpointFormat), ShouldBeTrue)
		})
	})
}

func TestDiscoverFiles(t *testing.T) {
	Convey("Given a model directory", t, func() {
		tempDir, err := os.MkdirTemp("", "discover_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		Convey("When checkpoint 7 has a data and an index file", func() {
			writeFiles(tempDir, map[string]string{
				"checkpoint":          "ckpt-7",
				"model_metadata.json": "{}",
				"ckpt-7.data":         "data",
				"ckpt-70.index":       "index",
				"ckpt-6.data":         "old",
			})

			files, err := DiscoverFiles(tempDir, "7")

			Convey("It should match by substring and keep fixed files first", func() {
				So(err, ShouldBeNil)
				So(files, ShouldResemble, []string{
					filepath.Join(tempDir, "checkpoint"),
					filepath.Join(tempDir, "model_metadata.json"),
					filepath.Join(tempDir, "ckpt-7.data"),
					filepath.Join(tempDir, "ckpt-70.index"),
				})
			})
		})

		Convey("When a checkpoint is sharded", func() {
			writeFiles(tempDir, map[string]string{
				"model-00004-of-00004.ckpt": "",
				"model-00001-of-00004.ckpt": "",
			})

			files, err := DiscoverFiles(tempDir, "4")

			Convey("It should include every shard that mentions the id", func() {
				So(err, ShouldBeNil)
				So(files, ShouldHaveLength, 4)
				So(files[2], ShouldEqual, filepath.Join(tempDir, "model-00001-of-00004.ckpt"))
				So(files[3], ShouldEqual, filepath.Join(tempDir, "model-00004-of-00004.ckpt"))
			})
		})

		Convey("When directories and dotfiles match the id", func() {
			So(os.Mkdir(filepath.Join(tempDir, "eval-3"), 0755), ShouldBeNil)
			writeFiles(tempDir, map[string]string{".ckpt-3.swp": "", "w-3.bin": ""})

			files, err := DiscoverFiles(tempDir, "3")

			Convey("It should skip them", func() {
				So(err, ShouldBeNil)
				So(files, ShouldHaveLength, 3)
				So(files, ShouldContain, filepath.Join(tempDir, "w-3.bin"))
			})
		})

		Convey("When the fixed files are missing", func() {
			files, err := DiscoverFiles(tempDir, "1")

			Convey("It should still list them for upload", func() {
				So(err, ShouldBeNil)
				So(files, ShouldHaveLength, 2)
			})
		})

		Convey("When the directory does not exist", func() {
			_, err := DiscoverFiles(filepath.Join(tempDir, "missing"), "1")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestRemoteKey(t *testing.T) {
	Convey("Given a prefix and a local file", t, func() {
		So(RemoteKey("rl/run-1", "/data/model/w-3.bin"), ShouldEqual, "rl/run-1/model/w-3.bin")
		So(RemoteKey("rl/run-1/", "/data/model/checkpoint"), ShouldEqual, "rl/run-1/model/checkpoint")
	})
}

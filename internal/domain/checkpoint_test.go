package domain

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCheckpoint(t *testing.T) {
	Convey("Given a checkpoint marker line", t, func() {
		Convey("When it names a TensorFlow checkpoint", func() {
			ckpt, err := ParseCheckpoint(`model_checkpoint_path: "model.ckpt-12345"`)

			Convey("It should return the first digit run", func() {
				So(err, ShouldBeNil)
				So(ckpt, ShouldEqual, Checkpoint("12345"))
				So(ckpt.String(), ShouldEqual, "12345")
			})
		})

		Convey("When it holds several digit runs", func() {
			ckpt, err := ParseCheckpoint("model-00001-of-00004")

			Convey("It should keep leading zeros of the first run only", func() {
				So(err, ShouldBeNil)
				So(ckpt, ShouldEqual, Checkpoint("00001"))
			})
		})

		Convey("When it holds no digits", func() {
			ckpt, err := ParseCheckpoint("model.ckpt-latest")

			Convey("It should return ErrCheckpointFormat", func() {
				So(ckpt, ShouldEqual, Checkpoint(""))
				So(errors.Is(err, ErrCheckpointFormat), ShouldBeTrue)
			})
		})

		Convey("When it is empty", func() {
			_, err := ParseCheckpoint("")
			So(errors.Is(err, ErrCheckpointFormat), ShouldBeTrue)
		})
	})
}

func TestRemoteError(t *testing.T) {
	Convey("Given a RemoteError", t, func() {
		cause := errors.New("connection reset")

		Convey("With a key", func() {
			err := NewRemoteError("upload", "models", "run/model/checkpoint", cause)

			So(err.Error(), ShouldEqual, "upload models/run/model/checkpoint: connection reset")
			So(errors.Is(err, cause), ShouldBeTrue)
		})

		Convey("Without a key", func() {
			err := NewRemoteError("list", "models", "", cause)
			So(err.Error(), ShouldEqual, "list models: connection reset")
		})
	})

	Convey("Given a DeleteError", t, func() {
		err := &DeleteError{
			Bucket: "models",
			Failed: map[string]string{"b": "AccessDenied", "a": "InternalError"},
		}

		Convey("It should list failed keys in order", func() {
			So(err.Error(), ShouldEqual,
				"delete models: 2 key(s) not deleted: a (InternalError), b (AccessDenied)")
		})
	})
}

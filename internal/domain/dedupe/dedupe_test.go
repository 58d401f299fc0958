package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/adsim/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

type submission struct {
	team string
	flag int
}

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper[string]()

			Convey("Then it should be empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper[submission](dedupe.WithCapacity(8))

			Convey("And the key is new", func() {
				seen := d.SeenAndRecord(ctx, submission{"A", 1})

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(d.Seen(ctx, submission{"A", 1}), ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, submission{"A", 1})
				seen := d.SeenAndRecord(ctx, submission{"A", 1})

				Convey("Then it should return true without growing", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And keys differ in a single field", func() {
				So(d.SeenAndRecord(ctx, submission{"A", 1}), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, submission{"B", 1}), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, submission{"A", 2}), ShouldBeFalse)

				Convey("Then each is recorded separately", func() {
					So(d.Size(), ShouldEqual, 3)
					So(d.Seen(ctx, submission{"B", 2}), ShouldBeFalse)
				})
			})
		})

		Convey("When many goroutines submit overlapping keys", func() {
			d := dedupe.NewInMemoryDeduper[string]()
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < 100; i++ {
						if !d.SeenAndRecord(ctx, fmt.Sprintf("flag-%d", i)) {
							mu.Lock()
							fresh++
							mu.Unlock()
						}
					}
				}()
			}
			wg.Wait()

			Convey("Then every key is recorded exactly once", func() {
				So(fresh, ShouldEqual, 100)
				So(d.Size(), ShouldEqual, 100)
			})
		})
	})
}

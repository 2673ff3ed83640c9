package tracing

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ssdctrl/sim"
)

var _ = Describe("SQLiteWriter", func() {
	var (
		path string
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "trace")
	})

	It("should write records that can be read back", func() {
		w := NewSQLiteWriter(path)
		w.Init()

		w.Write(Record{ID: "b", Time: 2, Where: "F", Kind: KindDispatch, What: "x"})
		w.Write(Record{ID: "a", Time: 1, Where: "F", Kind: KindTransition, What: "y"})
		w.Write(Record{ID: "c", Time: 3, Where: "F", Kind: KindDispatch, What: "z"})
		w.Flush()
		Expect(w.Close()).To(Succeed())

		r := NewSQLiteReader(w.FileName())
		r.Init()
		defer r.Close()

		all, err := r.ListRecords("")
		Expect(err).NotTo(HaveOccurred())
		Expect(all).To(HaveLen(3))
		Expect(all[0].ID).To(Equal("a"))

		dispatches, err := r.ListRecords(KindDispatch)
		Expect(err).NotTo(HaveOccurred())
		Expect(dispatches).To(Equal([]Record{
			{ID: "b", Time: sim.VTimeInSec(2), Where: "F", Kind: KindDispatch, What: "x"},
			{ID: "c", Time: sim.VTimeInSec(3), Where: "F", Kind: KindDispatch, What: "z"},
		}))
	})

	It("should refuse to overwrite an existing trace", func() {
		w := NewSQLiteWriter(path)
		w.Init()
		w.Close()

		Expect(func() { NewSQLiteWriter(path).Init() }).To(Panic())
	})
})

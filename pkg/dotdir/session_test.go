package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/venyro/pkg/dotdir"
	"github.com/papercomputeco/venyro/pkg/llm"
)

var _ = Describe("dotdir.Manager session", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadSessionState", func() {
		It("returns nil when no session file exists", func() {
			state, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("loads a session in the gateway history shape", func() {
			data := `{"action":"chatWithStrategy","context":"Acme strategy","history":[{"role":"user","parts":[{"text":"hello"}]},{"role":"model","parts":[{"text":"hi there"}]}]}`
			Expect(os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte(data), 0o600)).To(Succeed())

			state, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Action).To(Equal("chatWithStrategy"))
			Expect(state.Context).To(Equal("Acme strategy"))
			Expect(state.History).To(HaveLen(2))
			Expect(state.History[1].Role).To(Equal(llm.RoleModel))
			Expect(state.History[1].Text()).To(Equal("hi there"))
		})

		It("returns error for invalid JSON", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "session.json"), []byte("not json"), 0o600)).To(Succeed())

			state, err := m.LoadSessionState(tmpDir)
			Expect(err).To(HaveOccurred())
			Expect(state).To(BeNil())
		})
	})

	Describe("SaveSession", func() {
		It("round-trips the session state", func() {
			state := &dotdir.SessionState{
				Action: "refineBlueprint",
				History: []llm.Turn{
					llm.NewTextTurn(llm.RoleUser, "make it cheaper"),
					llm.NewTextTurn(llm.RoleModel, `{"productName":"Acme"}`),
				},
			}
			Expect(m.SaveSession(state, tmpDir)).To(Succeed())

			loaded, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(state))
		})

		It("returns error for nil state", func() {
			Expect(m.SaveSession(nil, tmpDir)).To(HaveOccurred())
		})
	})

	Describe("ClearSession", func() {
		It("removes the session file", func() {
			Expect(m.SaveSession(&dotdir.SessionState{Action: "chatWithStrategy"}, tmpDir)).To(Succeed())
			Expect(m.ClearSession(tmpDir)).To(Succeed())

			state, err := m.LoadSessionState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("is a no-op when there is no session", func() {
			Expect(m.ClearSession(tmpDir)).To(Succeed())
		})
	})
})

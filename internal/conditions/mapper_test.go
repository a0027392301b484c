package conditions

import (
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/san-kum/waddington/internal/dynamo"
)

var _ = ginkgo.Describe("Map", func() {
	ginkgo.DescribeTable("derives parameters and tags for every pair",
		func(p Profile, c Condition, width, depth, noise float64, tag string) {
			m, err := Map(p, c)
			gomega.Expect(err).To(gomega.Succeed())
			gomega.Expect(m.Params.Width).To(gomega.BeNumerically("~", width, 1e-12))
			gomega.Expect(m.Params.Depth).To(gomega.BeNumerically("~", depth, 1e-12))
			gomega.Expect(m.Params.Noise).To(gomega.BeNumerically("~", noise, 1e-12))
			gomega.Expect(m.Tag).To(gomega.Equal(tag))
			gomega.Expect(m.Start).To(gomega.Equal(dynamo.DefaultStart))
		},
		ginkgo.Entry("NT control", Neurotypical, Control, 1.5, 1.5, 0.4, "baseline control"),
		ginkgo.Entry("NT supported", Neurotypical, Supported, 1.5, 2.25, 0.2, "social scaffolding"),
		ginkgo.Entry("NT tool", Neurotypical, ToolAssisted, 1.5, 1.2, 0.6, "neutral / low social"),
		ginkgo.Entry("rigid control", Rigid, Control, 0.6, 4.0, 0.3, "baseline control"),
		ginkgo.Entry("rigid supported", Rigid, Supported, 0.6, 4.0, 1.8, "social friction (high cost)"),
		ginkgo.Entry("rigid tool", Rigid, ToolAssisted, 0.6, 4.0, 0.3, "social bypass (low cost)"),
		ginkgo.Entry("dispersed control", Dispersed, Control, 3.0, 0.5, 0.6, "baseline control"),
		ginkgo.Entry("dispersed supported", Dispersed, Supported, 3.0, 1.5, 0.6, "external regulation"),
		ginkgo.Entry("dispersed tool", Dispersed, ToolAssisted, 3.0, 0.5, 1.6, "constructivist burnout"),
	)

	ginkgo.It("keeps every derived landscape inside the configurable ranges", func() {
		all := All()
		gomega.Expect(all).To(gomega.HaveLen(9))
		for _, m := range all {
			gomega.Expect(m.Params.Validate()).To(gomega.Succeed(), "%v/%v", m.Profile, m.Condition)
			gomega.Expect(m.Params.WithinBounds(dynamo.DefaultBounds())).To(gomega.Succeed(), "%v/%v", m.Profile, m.Condition)
			gomega.Expect(m.Predictions).To(gomega.HaveLen(len(Channels())))
			gomega.Expect(m.Tag).NotTo(gomega.Equal(TagUndefined))
		}
	})

	ginkgo.It("never alters width", func() {
		for _, m := range All() {
			gomega.Expect(m.Params.Width).To(gomega.Equal(m.Baseline.Width))
		}
	})

	ginkgo.It("leaves the baseline untouched under control", func() {
		for _, p := range Profiles() {
			m, err := Map(p, Control)
			gomega.Expect(err).To(gomega.Succeed())
			base, ok := p.Baseline()
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(m.Params).To(gomega.Equal(base))
			gomega.Expect(m.Modifier.IsIdentity()).To(gomega.BeTrue())
		}
	})

	ginkgo.It("returns an undefined mapping for unknown profiles", func() {
		m, err := Map(Profile(9), Control)
		gomega.Expect(errors.Is(err, dynamo.ErrUnmappedCondition)).To(gomega.BeTrue())
		gomega.Expect(m.Tag).To(gomega.Equal(TagUndefined))
		gomega.Expect(m.Params).To(gomega.Equal(dynamo.Params{}))
	})

	ginkgo.It("returns an undefined mapping for unknown conditions", func() {
		m, err := Map(Rigid, Condition(-1))
		gomega.Expect(errors.Is(err, dynamo.ErrUnmappedCondition)).To(gomega.BeTrue())
		gomega.Expect(m.Tag).To(gomega.Equal(TagUndefined))
	})

	ginkgo.It("does not share prediction maps between calls", func() {
		a, _ := Map(Rigid, Control)
		a.Predictions[Emotional] = "changed"
		b, _ := Map(Dispersed, Control)
		gomega.Expect(b.Predictions[Emotional]).To(gomega.Equal("Low (blue)"))
	})
})

var _ = ginkgo.Describe("MapNames", func() {
	ginkgo.It("accepts aliases", func() {
		m, err := MapNames("ADHD", "llm")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(m.Profile).To(gomega.Equal(Dispersed))
		gomega.Expect(m.Condition).To(gomega.Equal(ToolAssisted))
	})

	ginkgo.It("rejects unknown names", func() {
		m, err := MapNames("neurotypical", "homework")
		gomega.Expect(errors.Is(err, dynamo.ErrUnmappedCondition)).To(gomega.BeTrue())
		gomega.Expect(m.Tag).To(gomega.Equal(TagUndefined))

		_, err = MapNames("typical", "control")
		gomega.Expect(errors.Is(err, dynamo.ErrUnmappedCondition)).To(gomega.BeTrue())
	})
})

var _ = ginkgo.Describe("Vocabulary", func() {
	ginkgo.It("renames channels without touching labels", func() {
		m, err := Map(Rigid, Supported)
		gomega.Expect(err).To(gomega.Succeed())

		phys := m.Sensors(Physiological)
		plain := m.Sensors(Plain)
		gomega.Expect(phys).To(gomega.HaveLen(4))
		gomega.Expect(plain).To(gomega.HaveLen(4))
		gomega.Expect(phys[0]).To(gomega.Equal(Reading{Channel: "fNIRS (Amygdala)", Label: "High alert (red)"}))
		gomega.Expect(plain[0]).To(gomega.Equal(Reading{Channel: "Emotional reactivity", Label: "High alert (red)"}))
		gomega.Expect(phys[3].Channel).To(gomega.Equal("GSR (Stress)"))
		for i := range phys {
			gomega.Expect(phys[i].Label).To(gomega.Equal(plain[i].Label))
		}
	})

	ginkgo.It("parses by name", func() {
		v, err := ParseVocabulary("plain")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(v.Name).To(gomega.Equal("plain"))

		v, err = ParseVocabulary("")
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(v.Name).To(gomega.Equal("physiological"))

		_, err = ParseVocabulary("klingon")
		gomega.Expect(errors.Is(err, dynamo.ErrInvalidParameter)).To(gomega.BeTrue())
	})
})

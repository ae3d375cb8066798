package testgen_test

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/metrics"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/testgen"
)

const loginResponse = `TITULO: Verify login with valid credentials
TIPO: Api
DESCRIPCIÓN: Confirm that submitting valid credentials returns a success response and session token, covering the primary authentication path and guarding against regression in the login handler introduced by this fix.
RESULTADO: HTTP 200 with a valid session token in the response body
---
`

var _ = Describe("Generator", func() {
	var (
		ctx       context.Context
		settings  config.AIConfig
		reads     int
		transport *fakeTransport
		factory   *fakeFactory
		generator *testgen.Generator
	)

	BeforeEach(func() {
		ctx = context.Background()
		reads = 0
		settings = config.AIConfig{
			Provider: "cli",
			CLI:      config.CLIConfig{APIKey: testAPIKey},
		}
		transport = &fakeTransport{kind: model.ProviderCLI, response: loginResponse}
		factory = &fakeFactory{transport: transport}
		source := testgen.SettingsFunc(func() (config.AIConfig, error) {
			reads++
			return settings, nil
		})
		generator = testgen.NewGenerator(source, factory, metrics.New())
	})

	It("generates the login scenario end to end", func() {
		result, err := generator.Generate(ctx, loginIssue(), model.HintNone)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.IssueKey).To(Equal("PROJ-1"))
		Expect(result.Provider).To(Equal(model.ProviderCLI))
		Expect(result.RunID).NotTo(BeZero())
		Expect(result.Degraded).To(BeFalse())
		Expect(result.Cases).To(Equal([]model.TestCase{{
			Title:          "Verify login with valid credentials",
			Category:       model.CategoryApi,
			Description:    "Confirm that submitting valid credentials returns a success response and session token, covering the primary authentication path and guarding against regression in the login handler introduced by this fix.",
			ExpectedResult: "HTTP 200 with a valid session token in the response body",
		}}))

		Expect(transport.checks).To(Equal(1))
		Expect(transport.invokes).To(Equal(1))
		Expect(transport.prompts[0]).To(Equal(testgen.BuildPrompt(loginIssue(), model.HintNone)))
	})

	It("re-reads settings on every call", func() {
		_, err := generator.Generate(ctx, loginIssue(), model.HintNone)
		Expect(err).NotTo(HaveOccurred())

		settings.Provider = "chat"
		_, err = generator.Generate(ctx, loginIssue(), model.HintNone)
		Expect(err).NotTo(HaveOccurred())

		Expect(reads).To(Equal(2))
		Expect(factory.kinds).To(Equal([]model.ProviderKind{model.ProviderCLI, model.ProviderChat}))
	})

	It("flags degraded results", func() {
		transport.response = "no puedo generar eso"

		result, err := generator.Generate(ctx, loginIssue(), model.HintNone)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Degraded).To(BeTrue())
		Expect(result.Cases).To(HaveLen(3))
	})

	It("returns an empty, non-degraded result for an empty response", func() {
		transport.response = ""

		result, err := generator.Generate(ctx, loginIssue(), model.HintNone)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Empty()).To(BeTrue())
		Expect(result.Degraded).To(BeFalse())
	})

	It("applies the hint to unrecognized categories", func() {
		transport.response = "TITULO: t\nTIPO: Bogus\nDESCRIPCION: d\nRESULTADO: r"

		result, err := generator.Generate(ctx, loginIssue(), model.HintApi)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Cases[0].Category).To(Equal(model.CategoryApi))
		Expect(transport.prompts[0]).To(ContainSubstring("## Enfoque: Api"))
	})

	Context("failures", func() {
		It("rejects an unknown provider as a configuration error", func() {
			settings.Provider = "carrier-pigeon"

			_, err := generator.Generate(ctx, loginIssue(), model.HintNone)

			Expect(errors.Is(err, testgen.ErrConfigurationMissing)).To(BeTrue())
			Expect(errors.Is(err, testgen.ErrUnknownProvider)).To(BeTrue())
			Expect(testgen.StageOf(err)).To(Equal(testgen.StageConfiguration))
			Expect(err.Error()).To(ContainSubstring("configuration"))
			Expect(factory.kinds).To(BeEmpty())
		})

		It("reports settings that cannot be read", func() {
			source := testgen.SettingsFunc(func() (config.AIConfig, error) {
				return config.AIConfig{}, errors.New("parsing settings file .testgen.yaml: bad indent")
			})
			generator = testgen.NewGenerator(source, factory, nil)

			_, err := generator.Generate(ctx, loginIssue(), model.HintNone)

			Expect(testgen.KindOf(err)).To(Equal(testgen.KindConfigurationMissing))
			Expect(testgen.StageOf(err)).To(Equal(testgen.StageConfiguration))
		})

		It("reports factory failures at the configuration stage", func() {
			factory.err = fmt.Errorf("%w: CHAT_API_KEY is not set", testgen.ErrConfigurationMissing)

			_, err := generator.Generate(ctx, loginIssue(), model.HintNone)

			Expect(errors.Is(err, testgen.ErrConfigurationMissing)).To(BeTrue())
			Expect(testgen.StageOf(err)).To(Equal(testgen.StageConfiguration))
		})

		It("names the availability stage and does not invoke", func() {
			transport.availableErr = fmt.Errorf("%w: gemini --version exited with code 127", testgen.ErrProviderUnavailable)

			_, err := generator.Generate(ctx, loginIssue(), model.HintNone)

			Expect(errors.Is(err, testgen.ErrProviderUnavailable)).To(BeTrue())
			Expect(testgen.StageOf(err)).To(Equal(testgen.StageAvailability))
			Expect(err.Error()).To(ContainSubstring("availability check"))
			Expect(transport.invokes).To(Equal(0))
		})

		DescribeTable("invocation failures keep their kind",
			func(cause error, kind testgen.ErrorKind) {
				transport.invokeErr = cause

				_, err := generator.Generate(ctx, loginIssue(), model.HintNone)

				Expect(testgen.KindOf(err)).To(Equal(kind))
				Expect(testgen.StageOf(err)).To(Equal(testgen.StageInvocation))
				Expect(err.Error()).To(ContainSubstring("invocation"))
				Expect(transport.invokes).To(Equal(1))
			},
			Entry("timeout", fmt.Errorf("%w: gemini did not finish", testgen.ErrTimeout), testgen.KindTimeout),
			Entry("process failed", fmt.Errorf("%w: exit 1", testgen.ErrProcessFailed), testgen.KindProcessFailed),
			Entry("unavailable", fmt.Errorf("%w: 503", testgen.ErrProviderUnavailable), testgen.KindProviderUnavailable),
			Entry("anything else", errors.New("connection reset"), testgen.KindUnexpected),
		)

		It("redacts credentials from stage errors", func() {
			transport.invokeErr = fmt.Errorf("%w: bad key %s", testgen.ErrProcessFailed, testAPIKey)

			_, err := generator.Generate(ctx, loginIssue(), model.HintNone)

			Expect(errors.Is(err, testgen.ErrProcessFailed)).To(BeTrue())
			Expect(err.Error()).NotTo(ContainSubstring(testAPIKey))
		})

		It("recovers a panic into an error for the stage in progress", func() {
			transport.panicOn = testgen.StageInvocation

			result, err := generator.Generate(ctx, loginIssue(), model.HintNone)

			Expect(result).To(BeNil())
			Expect(errors.Is(err, testgen.ErrUnexpected)).To(BeTrue())
			Expect(testgen.StageOf(err)).To(Equal(testgen.StageInvocation))
			Expect(err.Error()).NotTo(ContainSubstring(testAPIKey))
		})

		It("recovers a panic during the availability check", func() {
			transport.panicOn = testgen.StageAvailability

			_, err := generator.Generate(ctx, loginIssue(), model.HintNone)

			Expect(testgen.StageOf(err)).To(Equal(testgen.StageAvailability))
			Expect(testgen.KindOf(err)).To(Equal(testgen.KindUnexpected))
		})
	})
})

var _ = Describe("Generator.CheckProvider", func() {
	It("runs only the availability check", func() {
		transport := &fakeTransport{kind: model.ProviderChat}
		source := testgen.SettingsFunc(func() (config.AIConfig, error) {
			return config.AIConfig{Provider: "chat"}, nil
		})
		generator := testgen.NewGenerator(source, &fakeFactory{transport: transport}, nil)

		kind, err := generator.CheckProvider(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(kind).To(Equal(model.ProviderChat))
		Expect(transport.checks).To(Equal(1))
		Expect(transport.invokes).To(Equal(0))
	})

	It("reports the availability stage on failure", func() {
		transport := &fakeTransport{kind: model.ProviderCLI, availableErr: testgen.ErrProviderUnavailable}
		source := testgen.SettingsFunc(func() (config.AIConfig, error) {
			return config.AIConfig{Provider: "cli"}, nil
		})
		generator := testgen.NewGenerator(source, &fakeFactory{transport: transport}, nil)

		_, err := generator.CheckProvider(context.Background())

		Expect(testgen.StageOf(err)).To(Equal(testgen.StageAvailability))
		Expect(errors.Is(err, testgen.ErrProviderUnavailable)).To(BeTrue())
	})
})

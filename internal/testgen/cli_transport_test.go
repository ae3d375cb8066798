//go:build !windows

package testgen_test

import (
	"context"
	"errors"
	"syscall"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/AlexanderRomeroBasetis/jira-test-generator/core/config"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/model"
	"github.com/AlexanderRomeroBasetis/jira-test-generator/internal/testgen"
)

var _ = Describe("CLITransport", func() {
	var (
		ctx    context.Context
		runner *recordingRunner
	)

	BeforeEach(func() {
		ctx = context.Background()
		runner = newRecordingRunner()
	})

	It("is the cli provider", func() {
		Expect(testgen.NewCLITransport(cliConfig("gemini"), runner).Kind()).To(Equal(model.ProviderCLI))
	})

	Describe("CheckAvailability", func() {
		It("fails with a configuration error without spawning when the key is missing", func() {
			cfg := cliConfig(writeScript(`echo "1.0.0"`))
			cfg.APIKey = ""

			err := testgen.NewCLITransport(cfg, runner).CheckAvailability(ctx)

			Expect(errors.Is(err, testgen.ErrConfigurationMissing)).To(BeTrue())
			Expect(runner.calls()).To(Equal(0))
		})

		It("passes when the version command exits 0", func() {
			script := writeScript(`[ "$1" = "--version" ] && echo "0.9.0" && exit 0; exit 2`)

			Expect(testgen.NewCLITransport(cliConfig(script), runner).CheckAvailability(ctx)).To(Succeed())
			Expect(runner.commands[0].Args).To(Equal([]string{"--version"}))
		})

		It("passes a lenient check when the tool prints its version to stderr and exits non-zero", func() {
			script := writeScript(`echo "fake-ai 0.9.0" >&2; exit 1`)

			Expect(testgen.NewCLITransport(cliConfig(script), runner).CheckAvailability(ctx)).To(Succeed())
		})

		It("fails a strict check on a non-zero exit", func() {
			cfg := cliConfig(writeScript(`echo "fake-ai 0.9.0" >&2; exit 1`))
			cfg.LenientVersionCheck = false

			err := testgen.NewCLITransport(cfg, runner).CheckAvailability(ctx)
			Expect(errors.Is(err, testgen.ErrProviderUnavailable)).To(BeTrue())
		})

		It("fails a lenient check when the tool prints nothing", func() {
			err := testgen.NewCLITransport(cliConfig(writeScript(`exit 1`)), runner).CheckAvailability(ctx)
			Expect(errors.Is(err, testgen.ErrProviderUnavailable)).To(BeTrue())
		})

		It("reports a missing binary as unavailable", func() {
			err := testgen.NewCLITransport(cliConfig("/nonexistent/fake-ai"), runner).CheckAvailability(ctx)
			Expect(errors.Is(err, testgen.ErrProviderUnavailable)).To(BeTrue())
		})
	})

	Describe("Invoke", func() {
		It("passes the prompt with -p and the credential only through the environment", func() {
			script := writeScript(`
[ "$GEMINI_API_KEY" = "` + testAPIKey + `" ] || { echo "missing key" >&2; exit 9; }
for a in "$@"; do
  case "$a" in *` + testAPIKey + `*) echo "key leaked into args" >&2; exit 8;; esac
done
echo "args: $*"`)

			out, err := testgen.NewCLITransport(cliConfig(script), runner).Invoke(ctx, "hola mundo")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("args: -m gemini-2.5-flash -p hola mundo"))
			Expect(runner.commands[0].Env).To(ConsistOf("GEMINI_API_KEY=" + testAPIKey))
			Expect(runner.commands[0].Stdin).To(BeEmpty())
		})

		It("prepends configured extra args", func() {
			cfg := cliConfig(writeScript(`echo "$*"`))
			cfg.Args = []string{"--yolo"}

			out, err := testgen.NewCLITransport(cfg, runner).Invoke(ctx, "p")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("--yolo -m gemini-2.5-flash -p p"))
		})

		It("writes the prompt to stdin in stdin mode", func() {
			cfg := cliConfig(writeScript(`echo "args: $*"; cat`))
			cfg.PromptMode = config.PromptModeStdin

			out, err := testgen.NewCLITransport(cfg, runner).Invoke(ctx, "TITULO: desde stdin")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("args: -m gemini-2.5-flash\nTITULO: desde stdin"))
		})

		It("runs in the configured working directory", func() {
			cfg := cliConfig(writeScript(`pwd -P`))
			cfg.WorkDir = GinkgoT().TempDir()

			_, err := testgen.NewCLITransport(cfg, runner).Invoke(ctx, "p")
			Expect(err).NotTo(HaveOccurred())
			Expect(runner.commands[0].Dir).To(Equal(cfg.WorkDir))
		})

		It("strips benign noise lines from stdout", func() {
			script := writeScript(`echo "Loaded cached credentials."; echo "TITULO: t"; echo "Data collection is disabled."; echo "RESULTADO: r"`)

			out, err := testgen.NewCLITransport(cliConfig(script), runner).Invoke(ctx, "p")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("TITULO: t\nRESULTADO: r"))
		})

		It("fails with the captured stderr on a non-zero exit", func() {
			script := writeScript(`echo "quota exhausted for model" >&2; exit 3`)

			_, err := testgen.NewCLITransport(cliConfig(script), runner).Invoke(ctx, "p")

			Expect(errors.Is(err, testgen.ErrProcessFailed)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("exited with code 3"))
			Expect(err.Error()).To(ContainSubstring("quota exhausted for model"))
		})

		It("never includes the credential in errors", func() {
			script := writeScript(`echo "invalid key $GEMINI_API_KEY" >&2; exit 1`)

			_, err := testgen.NewCLITransport(cliConfig(script), runner).Invoke(ctx, "p")

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).NotTo(ContainSubstring(testAPIKey))
			Expect(err.Error()).To(ContainSubstring("[REDACTED]"))
		})

		It("fails when a zero exit has empty output and an error on stderr", func() {
			script := writeScript(`echo "Loaded cached credentials."; echo "Error: API key not valid" >&2; exit 0`)

			_, err := testgen.NewCLITransport(cliConfig(script), runner).Invoke(ctx, "p")

			Expect(errors.Is(err, testgen.ErrProcessFailed)).To(BeTrue())
		})

		It("returns empty output when stderr is only diagnostic", func() {
			script := writeScript(`echo "using model gemini-2.5-flash" >&2; exit 0`)

			out, err := testgen.NewCLITransport(cliConfig(script), runner).Invoke(ctx, "p")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(BeEmpty())
		})

		It("prefers stdout over error-looking stderr on a zero exit", func() {
			script := writeScript(`echo "TITULO: t"; echo "error: telemetry upload failed" >&2`)

			out, err := testgen.NewCLITransport(cliConfig(script), runner).Invoke(ctx, "p")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("TITULO: t"))
		})

		It("fails fast on a missing key without spawning", func() {
			cfg := cliConfig(writeScript(`echo ok`))
			cfg.APIKey = "  "

			_, err := testgen.NewCLITransport(cfg, runner).Invoke(ctx, "p")

			Expect(errors.Is(err, testgen.ErrConfigurationMissing)).To(BeTrue())
			Expect(runner.calls()).To(Equal(0))
		})

		It("times out, kills the process and reports Timeout", func() {
			cfg := cliConfig(writeScript(`exec sleep 30`))
			cfg.Timeout = 300 * time.Millisecond

			start := time.Now()
			_, err := testgen.NewCLITransport(cfg, runner).Invoke(ctx, "p")

			Expect(errors.Is(err, testgen.ErrTimeout)).To(BeTrue())
			Expect(time.Since(start)).To(BeNumerically("<", 5*time.Second))

			res := runner.lastResult()
			Expect(res).NotTo(BeNil())
			Expect(syscall.Kill(res.PID, 0)).To(MatchError(syscall.ESRCH))
		})
	})
})

var _ = Describe("Generator with the CLI provider", func() {
	It("turns a hung CLI into a Timeout failure and leaves no process behind", func() {
		runner := newRecordingRunner()
		cli := cliConfig(writeScript(`[ "$1" = "--version" ] && echo "0.9.0" && exit 0; exec sleep 30`))
		cli.Timeout = 300 * time.Millisecond

		source := testgen.SettingsFunc(func() (config.AIConfig, error) {
			return config.AIConfig{Provider: "cli", CLI: cli}, nil
		})
		generator := testgen.NewGenerator(source, testgen.NewTransportFactory(runner), nil)

		result, err := generator.Generate(context.Background(), loginIssue(), model.HintNone)

		Expect(result).To(BeNil())
		Expect(testgen.KindOf(err)).To(Equal(testgen.KindTimeout))
		Expect(testgen.StageOf(err)).To(Equal(testgen.StageInvocation))
		Expect(runner.calls()).To(Equal(2))
		Expect(syscall.Kill(runner.lastResult().PID, 0)).To(MatchError(syscall.ESRCH))
	})

	It("parses real CLI output end to end", func() {
		runner := newRecordingRunner()
		cli := cliConfig(writeScript(`[ "$1" = "--version" ] && echo "0.9.0" && exit 0
echo "Loaded cached credentials."
cat <<'OUT'
**TITULO:** Login con credenciales válidas
**TIPO:** Api
**DESCRIPCIÓN:** Enviar POST /login con usuario y contraseña válidos.
Verificar el token devuelto.
**RESULTADO:** 200 OK con token de sesión
---
OUT`))

		source := testgen.SettingsFunc(func() (config.AIConfig, error) {
			return config.AIConfig{Provider: "gemini", CLI: cli}, nil
		})
		generator := testgen.NewGenerator(source, testgen.NewTransportFactory(runner), nil)

		result, err := generator.Generate(context.Background(), loginIssue(), model.HintNone)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Provider).To(Equal(model.ProviderCLI))
		Expect(result.Cases).To(HaveLen(1))
		Expect(result.Cases[0].Description).To(Equal("Enviar POST /login con usuario y contraseña válidos.\nVerificar el token devuelto."))
	})
})

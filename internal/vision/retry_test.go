package vision

import (
	"context"
	"errors"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("isTransient", func() {
	It("retries rate limits and server errors", func() {
		Expect(isTransient(&httpStatusError{StatusCode: 429})).To(BeTrue())
		Expect(isTransient(&httpStatusError{StatusCode: 500})).To(BeTrue())
		Expect(isTransient(&httpStatusError{StatusCode: 503})).To(BeTrue())
	})

	It("does not retry client errors", func() {
		Expect(isTransient(&httpStatusError{StatusCode: 400})).To(BeFalse())
		Expect(isTransient(&httpStatusError{StatusCode: 401})).To(BeFalse())
		Expect(isTransient(&httpStatusError{StatusCode: 404})).To(BeFalse())
	})

	It("retries deadline expiry but not cancellation", func() {
		Expect(isTransient(context.DeadlineExceeded)).To(BeTrue())
		Expect(isTransient(context.Canceled)).To(BeFalse())
	})

	It("retries errors that read like network trouble", func() {
		Expect(isTransient(errors.New("connection refused"))).To(BeTrue())
		Expect(isTransient(errors.New("request timeout"))).To(BeTrue())
	})

	It("does not retry parse-shaped errors", func() {
		Expect(isTransient(errors.New("no json object in response"))).To(BeFalse())
		Expect(isTransient(nil)).To(BeFalse())
	})
})

var _ = Describe("withRetries", func() {
	var attempts int

	BeforeEach(func() {
		attempts = 0
	})

	When("the call fails transiently then succeeds", func() {
		It("returns success after the extra attempt", func() {
			out, err := withRetries(context.Background(), discardLog, "test", 3, func(ctx context.Context) (string, error) {
				attempts++
				if attempts == 1 {
					return "", &httpStatusError{StatusCode: 503}
				}
				return "ok", nil
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("ok"))
			Expect(attempts).To(Equal(2))
		})
	})

	When("the call fails permanently", func() {
		It("gives up after a single attempt", func() {
			_, err := withRetries(context.Background(), discardLog, "test", 3, func(ctx context.Context) (string, error) {
				attempts++
				return "", &httpStatusError{StatusCode: 401, Body: "bad key"}
			})
			Expect(err).To(HaveOccurred())
			Expect(attempts).To(Equal(1))
		})
	})

	When("transient failures exhaust the budget", func() {
		It("stops at exactly maxRetries attempts", func() {
			_, err := withRetries(context.Background(), discardLog, "test", 2, func(ctx context.Context) (string, error) {
				attempts++
				return "", fmt.Errorf("connection reset")
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("all 2 attempts failed"))
			Expect(attempts).To(Equal(2))
		})
	})

	When("the context is cancelled during backoff", func() {
		It("returns the context error without further attempts", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := withRetries(ctx, discardLog, "test", 3, func(ctx context.Context) (string, error) {
				attempts++
				return "", &httpStatusError{StatusCode: 500}
			})
			Expect(err).To(MatchError(context.Canceled))
			Expect(attempts).To(Equal(1))
		})
	})
})

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// LoadTestConfig holds configuration for load testing
type LoadTestConfig struct {
	URL             string
	Amount          string
	ConcurrentUsers int
	RequestsPerUser int
	Timeout         time.Duration
	TestDuration    time.Duration
	RampUpDuration  time.Duration
	ThinkTime       time.Duration
}

// LoadTestResult holds the result of a single conversion request
type LoadTestResult struct {
	UserID     int
	RequestID  int
	StatusCode int
	Duration   time.Duration
	Success    bool
	Error      error
	Timestamp  time.Time
}

// LoadTestSummary holds the summary of load test results
type LoadTestSummary struct {
	TotalRequests       int
	SuccessfulRequests  int
	FailedRequests      int
	TotalDuration       time.Duration
	AverageResponseTime time.Duration
	MinResponseTime     time.Duration
	MaxResponseTime     time.Duration
	RequestsPerSecond   float64
	ErrorRate           float64
	ResponseTime95th    time.Duration
	ResponseTime99th    time.Duration
}

type convertResponse struct {
	Result string `json:"result"`
}

func main() {
	var config LoadTestConfig

	flag.StringVar(&config.URL, "url", "http://localhost:8081/api/v1/convert", "Convert endpoint to test")
	flag.StringVar(&config.Amount, "amount", "10", "Dollar amount sent as input")
	flag.IntVar(&config.ConcurrentUsers, "users", 10, "Number of concurrent users")
	flag.IntVar(&config.RequestsPerUser, "requests", 100, "Number of requests per user")
	flag.DurationVar(&config.Timeout, "timeout", 30*time.Second, "Request timeout")
	flag.DurationVar(&config.TestDuration, "duration", 0, "Test duration (0 = run until all requests complete)")
	flag.DurationVar(&config.RampUpDuration, "rampup", 5*time.Second, "Ramp-up duration")
	flag.DurationVar(&config.ThinkTime, "think", 100*time.Millisecond, "Think time between requests")
	flag.Parse()

	fmt.Printf("Starting load test...\n")
	fmt.Printf("URL: %s\n", config.URL)
	fmt.Printf("Amount: %s\n", config.Amount)
	fmt.Printf("Concurrent Users: %d\n", config.ConcurrentUsers)
	fmt.Printf("Requests per User: %d\n", config.RequestsPerUser)
	fmt.Printf("Timeout: %v\n", config.Timeout)
	fmt.Printf("Ramp-up Duration: %v\n", config.RampUpDuration)
	fmt.Printf("Think Time: %v\n", config.ThinkTime)
	fmt.Printf("Test Duration: %v\n", config.TestDuration)
	fmt.Println()

	summary := runLoadTest(config)
	printSummary(summary)
}

func runLoadTest(config LoadTestConfig) LoadTestSummary {
	if config.ConcurrentUsers <= 0 {
		config.ConcurrentUsers = 1
	}

	results := make(chan LoadTestResult, config.ConcurrentUsers*config.RequestsPerUser)
	client := &http.Client{Timeout: config.Timeout}

	payload, _ := json.Marshal(map[string]string{"input": config.Amount})

	startTime := time.Now()

	ctx := context.Background()
	if config.TestDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.TestDuration)
		defer cancel()
	}

	var wg sync.WaitGroup
	rampUpDelay := config.RampUpDuration / time.Duration(config.ConcurrentUsers)

	for userID := 0; userID < config.ConcurrentUsers; userID++ {
		wg.Add(1)
		go func(uid int) {
			defer wg.Done()

			time.Sleep(time.Duration(uid) * rampUpDelay)

			for reqID := 0; reqID < config.RequestsPerUser; reqID++ {
				select {
				case <-ctx.Done():
					return
				default:
				}

				results <- makeRequest(ctx, client, config.URL, payload, uid, reqID)

				if config.ThinkTime > 0 {
					time.Sleep(config.ThinkTime)
				}
			}
		}(userID)
	}

	wg.Wait()
	close(results)

	return processResults(results, time.Since(startTime))
}

func makeRequest(ctx context.Context, client *http.Client, url string, payload []byte, userID, requestID int) LoadTestResult {
	start := time.Now()
	result := LoadTestResult{
		UserID:    userID,
		RequestID: requestID,
		Timestamp: start,
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		result.Error = err
		return result
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(request)
	if err != nil {
		result.Duration = time.Since(start)
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	result.Duration = time.Since(start)
	result.StatusCode = resp.StatusCode
	if err != nil {
		result.Error = err
		return result
	}

	var converted convertResponse
	result.Success = resp.StatusCode == http.StatusOK &&
		json.Unmarshal(body, &converted) == nil &&
		converted.Result != ""

	return result
}

func processResults(results <-chan LoadTestResult, totalDuration time.Duration) LoadTestSummary {
	var summary LoadTestSummary
	var responseTimes []time.Duration

	summary.TotalDuration = totalDuration

	for result := range results {
		summary.TotalRequests++
		responseTimes = append(responseTimes, result.Duration)

		if result.Success {
			summary.SuccessfulRequests++
		} else {
			summary.FailedRequests++
		}
	}

	if summary.TotalRequests == 0 {
		return summary
	}

	summary.ErrorRate = float64(summary.FailedRequests) / float64(summary.TotalRequests) * 100
	summary.RequestsPerSecond = float64(summary.TotalRequests) / totalDuration.Seconds()

	sort.Slice(responseTimes, func(i, j int) bool { return responseTimes[i] < responseTimes[j] })

	var totalResponseTime time.Duration
	for _, rt := range responseTimes {
		totalResponseTime += rt
	}
	summary.MinResponseTime = responseTimes[0]
	summary.MaxResponseTime = responseTimes[len(responseTimes)-1]
	summary.AverageResponseTime = totalResponseTime / time.Duration(len(responseTimes))
	summary.ResponseTime95th = percentile(responseTimes, 95)
	summary.ResponseTime99th = percentile(responseTimes, 99)

	return summary
}

// percentile expects sorted input
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	index := int(float64(len(sorted)) * float64(p) / 100.0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func printSummary(summary LoadTestSummary) {
	fmt.Println("=== Load Test Results ===")
	if summary.TotalRequests == 0 {
		fmt.Println("No requests were sent")
		return
	}
	fmt.Printf("Total Requests: %d\n", summary.TotalRequests)
	fmt.Printf("Successful Conversions: %d (%.2f%%)\n", summary.SuccessfulRequests,
		float64(summary.SuccessfulRequests)/float64(summary.TotalRequests)*100)
	fmt.Printf("Failed Requests: %d (%.2f%%)\n", summary.FailedRequests, summary.ErrorRate)
	fmt.Printf("Total Duration: %v\n", summary.TotalDuration)
	fmt.Printf("Requests per Second: %.2f\n", summary.RequestsPerSecond)
	fmt.Printf("Average Response Time: %v\n", summary.AverageResponseTime)
	fmt.Printf("Min Response Time: %v\n", summary.MinResponseTime)
	fmt.Printf("Max Response Time: %v\n", summary.MaxResponseTime)
	fmt.Printf("95th Percentile Response Time: %v\n", summary.ResponseTime95th)
	fmt.Printf("99th Percentile Response Time: %v\n", summary.ResponseTime99th)

	fmt.Println("\n=== Performance Assessment ===")
	if summary.ErrorRate > 5.0 {
		fmt.Printf("High error rate: %.2f%% (target: < 5%%)\n", summary.ErrorRate)
	} else {
		fmt.Printf("Error rate: %.2f%% (good)\n", summary.ErrorRate)
	}

	if summary.ResponseTime99th > 100*time.Millisecond {
		fmt.Printf("Slow 99th percentile: %v (target: < 100ms)\n", summary.ResponseTime99th)
	} else {
		fmt.Printf("99th percentile: %v (good)\n", summary.ResponseTime99th)
	}
}

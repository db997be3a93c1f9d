package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

type LoadTestConfig struct {
	TargetURL       string
	ConcurrentUsers int
	Duration        time.Duration
	RequestsPerSec  int
	MalformedRatio  float64
}

type SensorData struct {
	Type    string          `json:"type"`
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

type BulkSensorData struct {
	Data []SensorData `json:"data"`
}

type TestResults struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	TotalLatency    time.Duration
	MinLatency      time.Duration
	MaxLatency      time.Duration
	Errors          []string
	mu              sync.RWMutex
}

func (tr *TestResults) AddResult(success bool, latency time.Duration, err error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.TotalRequests++
	tr.TotalLatency += latency

	if tr.MinLatency == 0 || latency < tr.MinLatency {
		tr.MinLatency = latency
	}
	if latency > tr.MaxLatency {
		tr.MaxLatency = latency
	}

	if success {
		tr.SuccessRequests++
	} else {
		tr.FailedRequests++
		if err != nil {
			tr.Errors = append(tr.Errors, err.Error())
		}
	}
}

func (tr *TestResults) GetStats() (float64, float64, time.Duration) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	successRate := float64(tr.SuccessRequests) / float64(tr.TotalRequests) * 100
	avgLatency := tr.TotalLatency / time.Duration(tr.TotalRequests)

	return successRate, float64(tr.TotalRequests), avgLatency
}

var sensorNames = []string{"Office", "Lab", "Hallway", "Kitchen", "Server Room", "Lobby"}

// generateSensorData builds a mixed batch of energy, air_quality and motion
// readings. A configurable slice of them carries malformed payloads, since
// tolerating those without failing the batch is what the service is for.
func generateSensorData(count int, malformedRatio float64) BulkSensorData {
	data := make([]SensorData, count)

	for i := 0; i < count; i++ {
		name := sensorNames[rand.Intn(len(sensorNames))]

		if rand.Float64() < malformedRatio {
			data[i] = malformedReading(name)
			continue
		}

		switch rand.Intn(3) {
		case 0:
			payload := fmt.Sprintf(`{"energy": %.2f}`, rand.Float64()*1000)
			data[i] = SensorData{Type: "energy", Name: name, Payload: json.RawMessage(payload)}
		case 1:
			payload := fmt.Sprintf(`{"co2": %d, "humidity": %d, "pm25": %d}`,
				rand.Intn(1200)+400, rand.Intn(60)+20, rand.Intn(100))
			data[i] = SensorData{Type: "air_quality", Name: name, Payload: json.RawMessage(payload)}
		default:
			payload := fmt.Sprintf(`{"motionDetected": %t}`, rand.Intn(2) == 1)
			data[i] = SensorData{Type: "motion", Name: name, Payload: json.RawMessage(payload)}
		}
	}

	return BulkSensorData{Data: data}
}

func malformedReading(name string) SensorData {
	switch rand.Intn(4) {
	case 0:
		// wrong type for the expected field
		return SensorData{Type: "energy", Name: name, Payload: json.RawMessage(`{"energy": "not-a-number"}`)}
	case 1:
		// missing field entirely
		return SensorData{Type: "air_quality", Name: name, Payload: json.RawMessage(`{"temperature": 21}`)}
	case 2:
		// boolean field as string
		return SensorData{Type: "motion", Name: name, Payload: json.RawMessage(`{"motionDetected": "yes"}`)}
	default:
		// unknown category
		return SensorData{Type: "vibration", Name: name, Payload: json.RawMessage(`{"hz": 50}`)}
	}
}

func sendRequest(client *http.Client, url string, data BulkSensorData) (bool, time.Duration, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return false, 0, err
	}

	start := time.Now()

	req, err := http.NewRequest("POST", url+"/api/v1/ingest", bytes.NewBuffer(jsonData))
	if err != nil {
		return false, time.Since(start), err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return false, time.Since(start), err
	}
	defer resp.Body.Close()

	latency := time.Since(start)
	success := resp.StatusCode >= 200 && resp.StatusCode < 300

	if !success {
		return false, latency, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return true, latency, nil
}

func worker(ctx context.Context, workerID int, config LoadTestConfig, results *TestResults, wg *sync.WaitGroup) {
	defer wg.Done()

	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ticker := time.NewTicker(time.Second / time.Duration(config.RequestsPerSec))
	defer ticker.Stop()

	log.Printf("Worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Worker %d stopped", workerID)
			return
		case <-ticker.C:
			batchSize := rand.Intn(50) + 10 // 10-60 readings per batch
			testData := generateSensorData(batchSize, config.MalformedRatio)

			success, latency, err := sendRequest(client, config.TargetURL, testData)
			results.AddResult(success, latency, err)
		}
	}
}

func printProgress(ctx context.Context, results *TestResults, duration time.Duration) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			elapsed := time.Since(start)
			remaining := duration - elapsed

			successRate, totalReqs, avgLatency := results.GetStats()

			fmt.Printf("\n=== Progress Update ===\n")
			fmt.Printf("Elapsed: %v, Remaining: %v\n", elapsed.Round(time.Second), remaining.Round(time.Second))
			fmt.Printf("Total Requests: %.0f\n", totalReqs)
			fmt.Printf("Success Rate: %.2f%%\n", successRate)
			fmt.Printf("Average Latency: %v\n", avgLatency.Round(time.Millisecond))
			fmt.Printf("Requests/sec: %.2f\n", totalReqs/elapsed.Seconds())

			if remaining <= 0 {
				return
			}
		}
	}
}

func testMetricsEndpoints(client *http.Client, baseURL string) error {
	fmt.Println("\n=== Testing Metrics Endpoints ===")

	start := time.Now()
	resp, err := client.Get(baseURL + "/api/v1/metrics")
	if err != nil {
		return fmt.Errorf("metrics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("metrics endpoint returned HTTP %d", resp.StatusCode)
	}

	var snapshot map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return fmt.Errorf("failed to decode metrics response: %w", err)
	}

	fmt.Printf("Metrics query completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Total readings: %v\n", snapshot["totalReadings"])
	fmt.Printf("Average energy: %v\n", snapshot["averageEnergy"])
	fmt.Printf("Motion detected count: %v\n", snapshot["motionDetectedCount"])

	start = time.Now()
	resp, err = client.Get(baseURL + "/api/v1/readings/aggregated?range=1h")
	if err != nil {
		return fmt.Errorf("aggregated request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("aggregated endpoint returned HTTP %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode aggregated response: %w", err)
	}

	fmt.Printf("Aggregated query completed in %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("Points count: %v\n", result["count"])

	return nil
}

func main() {
	config := LoadTestConfig{
		TargetURL:       getEnv("TARGET_URL", "http://localhost:8080"),
		ConcurrentUsers: getEnvInt("CONCURRENT_USERS", 10),
		Duration:        getEnvDuration("DURATION", "60s"),
		RequestsPerSec:  getEnvInt("REQUESTS_PER_SEC", 5),
		MalformedRatio:  getEnvFloat("MALFORMED_RATIO", 0.1),
	}

	fmt.Printf("=== Load Test Configuration ===\n")
	fmt.Printf("Target URL: %s\n", config.TargetURL)
	fmt.Printf("Concurrent Users: %d\n", config.ConcurrentUsers)
	fmt.Printf("Duration: %v\n", config.Duration)
	fmt.Printf("Requests per second per user: %d\n", config.RequestsPerSec)
	fmt.Printf("Malformed payload ratio: %.2f\n", config.MalformedRatio)
	fmt.Printf("Total expected requests per second: %d\n", config.ConcurrentUsers*config.RequestsPerSec)

	// Wait for service to be ready
	fmt.Println("\nWaiting for service to be ready...")
	client := &http.Client{Timeout: 5 * time.Second}

	for i := 0; i < 30; i++ {
		resp, err := client.Get(config.TargetURL + "/health")
		if err == nil && resp.StatusCode == 200 {
			resp.Body.Close()
			fmt.Println("Service is ready!")
			break
		}
		if resp != nil {
			resp.Body.Close()
		}

		fmt.Printf("Waiting for service... (%d/30)\n", i+1)
		time.Sleep(2 * time.Second)
	}

	results := &TestResults{}

	ctx, cancel := context.WithTimeout(context.Background(), config.Duration)
	defer cancel()

	go printProgress(ctx, results, config.Duration)

	var wg sync.WaitGroup
	fmt.Printf("\nStarting %d concurrent users...\n", config.ConcurrentUsers)

	for i := 0; i < config.ConcurrentUsers; i++ {
		wg.Add(1)
		go worker(ctx, i+1, config, results, &wg)
	}

	wg.Wait()

	fmt.Printf("\n=== Final Results ===\n")
	successRate, totalReqs, avgLatency := results.GetStats()

	fmt.Printf("Total Requests: %.0f\n", totalReqs)
	fmt.Printf("Successful Requests: %d\n", results.SuccessRequests)
	fmt.Printf("Failed Requests: %d\n", results.FailedRequests)
	fmt.Printf("Success Rate: %.2f%%\n", successRate)
	fmt.Printf("Average Latency: %v\n", avgLatency.Round(time.Millisecond))
	fmt.Printf("Min Latency: %v\n", results.MinLatency.Round(time.Millisecond))
	fmt.Printf("Max Latency: %v\n", results.MaxLatency.Round(time.Millisecond))
	fmt.Printf("Throughput: %.2f requests/second\n", totalReqs/config.Duration.Seconds())

	if len(results.Errors) > 0 {
		fmt.Printf("\n=== Errors (showing first 10) ===\n")
		for i, err := range results.Errors {
			if i >= 10 {
				fmt.Printf("... and %d more errors\n", len(results.Errors)-10)
				break
			}
			fmt.Printf("- %s\n", err)
		}
	}

	if err := testMetricsEndpoints(&http.Client{Timeout: 30 * time.Second}, config.TargetURL); err != nil {
		fmt.Printf("Metrics endpoint test failed: %v\n", err)
	}

	fmt.Println("\nLoad test completed!")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	if parsed, err := time.ParseDuration(defaultValue); err == nil {
		return parsed
	}
	return time.Minute
}

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
)

const numWorkers = 50

var (
	baseURL      = flag.String("url", "http://127.0.0.1:8090", "receiptd base URL")
	testDuration = flag.Duration("duration", 10*time.Second, "length of each phase")
	formats      = []string{"html", "pdf", "escpos"}
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

// issued holds receipt ids created during the run so reads hit real records.
type issued struct {
	mu  sync.RWMutex
	ids []int64
}

func (i *issued) add(id int64) {
	i.mu.Lock()
	i.ids = append(i.ids, id)
	i.mu.Unlock()
}

func (i *issued) pick(rng *rand.Rand) (int64, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if len(i.ids) == 0 {
		return 0, false
	}
	return i.ids[rng.Intn(len(i.ids))], true
}

func main() {
	flag.Parse()

	fmt.Println("=== receiptd Load Test ===")
	fmt.Printf("Workers: %d | Phase duration: %s | Target: %s\n\n", numWorkers, *testDuration, *baseURL)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(*baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	ids := &issued{}

	fmt.Println("\n--- Phase 1: Issuing receipts (POST /receipts) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		return doIssue(rng, ids)
	})

	fmt.Println("\n--- Phase 2: Mixed load (20% issue, 40% render, 20% calculate, 20% history) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.20:
			return doIssue(rng, ids)
		case r < 0.60:
			return doRender(rng, ids)
		case r < 0.80:
			return doCalculate(rng)
		default:
			return doGetHistory(rng, ids)
		}
	})

	fmt.Println("\n--- Phase 3: Render-heavy load (cache) ---")
	runPhase(*testDuration, func(rng *rand.Rand) result {
		return doRender(rng, ids)
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-28s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 94))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-28s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  no requests completed")
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 94))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func send(endpoint, method, url string, body []byte, want int) (result, []byte) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return result{endpoint, 0, 0, true}, nil
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}, nil
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}, data
}

func doIssue(rng *rand.Rand, ids *issued) result {
	body, _ := json.Marshal(map[string]interface{}{
		"issuerId":            1,
		"customerName":        fmt.Sprintf("顧客%03d", rng.Intn(1000)),
		"productAmount":       rng.Intn(200_000) + 100,
		"shippingAmount":      rng.Intn(3) * 500,
		"isElectronicReceipt": rng.Float64() < 0.5,
	})
	r, data := send("POST /receipts", http.MethodPost, *baseURL+"/receipts", body, http.StatusCreated)
	if !r.err {
		var record struct {
			ID int64 `json:"id"`
		}
		if json.Unmarshal(data, &record) == nil && record.ID != 0 {
			ids.add(record.ID)
		}
	}
	return r
}

func doRender(rng *rand.Rand, ids *issued) result {
	id, ok := ids.pick(rng)
	if !ok {
		return doCalculate(rng)
	}
	format := formats[rng.Intn(len(formats))]
	url := fmt.Sprintf("%s/receipts/%d/document?format=%s", *baseURL, id, format)
	r, _ := send("GET /receipts/:id/document", http.MethodGet, url, nil, http.StatusOK)
	return r
}

func doCalculate(rng *rand.Rand) result {
	body, _ := json.Marshal(map[string]interface{}{
		"productAmount":  rng.Intn(1_000_000),
		"shippingAmount": rng.Intn(2000),
		"taxMode":        []string{"exclusive", "inclusive"}[rng.Intn(2)],
	})
	r, _ := send("POST /calculate", http.MethodPost, *baseURL+"/calculate", body, http.StatusOK)
	return r
}

func doGetHistory(rng *rand.Rand, ids *issued) result {
	id, ok := ids.pick(rng)
	if !ok || rng.Float64() < 0.1 {
		r, _ := send("GET /history", http.MethodGet, *baseURL+"/history", nil, http.StatusOK)
		return r
	}
	r, _ := send("GET /history/:id", http.MethodGet, fmt.Sprintf("%s/history/%d", *baseURL, id), nil, http.StatusOK)
	return r
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

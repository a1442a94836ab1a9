// Command genoverrides builds the override CSV embedded by the krholiday
// package (data/kr_overrides.csv) from one or more source CSV files.
//
// Sources use the same columns as the output (date,name_local,name_en). They
// are read from local files (-in) or fetched over HTTPS from an allowed host
// (-url). Files published by Korean public data portals are often EUC-KR
// encoded; pass -encoding euc-kr for those.
//
// Usage:
//
//	go run ./cmd/genoverrides -in data/kr_overrides.csv -in extra.csv -out data/kr_overrides.csv
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/jszwec/csvutil"

	krholiday "github.com/rabitt1ove/kr-holidays"
)

const (
	httpTimeout = 30 * time.Second
	maxRetries  = 3

	// Maximum response size to prevent memory exhaustion.
	maxCSVResponseSize = 5 * 1024 * 1024

	userAgent = "kr-holidays-generator/1.0 (https://github.com/rabitt1ove/kr-holidays)"

	fileHeader = `# Elections, referendums, state funerals and temporary holidays of the
# Republic of Korea, plus one-off substitute holidays before 2014.
# Regenerate with: go run ./cmd/genoverrides -in <file> -out data/kr_overrides.csv
`
)

// retryBaseDelay is the base delay between retry attempts (variable for testing).
var retryBaseDelay = 2 * time.Second

// allowedCSVHosts is the set of hostnames allowed for -url.
var allowedCSVHosts = map[string]bool{
	"www.data.go.kr":            true,
	"data.go.kr":                true,
	"raw.githubusercontent.com": true,
}

type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

func main() {
	var inputs, urls stringList
	flag.Var(&inputs, "in", "source CSV file (repeatable)")
	flag.Var(&urls, "url", "source CSV URL (repeatable, HTTPS only)")
	encoding := flag.String("encoding", "utf-8", "source encoding: utf-8 or euc-kr")
	output := flag.String("out", "data/kr_overrides.csv", "output file path")
	minRows := flag.Int("min-rows", 1, "fail when fewer rows are produced")
	flag.Parse()

	log.SetFlags(0)
	log.SetPrefix("genoverrides: ")

	if len(inputs) == 0 && len(urls) == 0 {
		log.Fatal("no sources: pass -in or -url")
	}
	decode, err := decoderFor(*encoding)
	if err != nil {
		log.Fatal(err)
	}

	var records []krholiday.OverrideRecord
	for _, path := range inputs {
		recs, err := readFile(path, decode)
		if err != nil {
			log.Fatalf("reading %s: %v", path, err)
		}
		records = append(records, recs...)
	}

	client := &http.Client{Timeout: httpTimeout}
	for _, u := range urls {
		if err := validateCSVURL(u); err != nil {
			log.Fatal(err)
		}
		body, err := fetchWithRetry(context.Background(), client, u)
		if err != nil {
			log.Fatalf("failed to fetch CSV: %v", err)
		}
		recs, err := krholiday.ReadOverrideRecords(decode(body))
		if err != nil {
			log.Fatalf("parsing %s: %v", u, err)
		}
		records = append(records, recs...)
	}

	src, n, err := generate(records)
	if err != nil {
		log.Fatalf("failed to generate CSV: %v", err)
	}
	if n < *minRows {
		log.Fatalf("validation failed: expected at least %d rows, got %d", *minRows, n)
	}

	if err := os.WriteFile(*output, src, 0644); err != nil {
		log.Fatalf("failed to write output: %v", err)
	}

	log.Printf("wrote %d overrides to %s", n, *output)
}

// decoderFor returns the reader transform for a source encoding.
func decoderFor(encoding string) (func(io.Reader) io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "_", "-")) {
	case "", "utf-8", "utf8":
		return func(r io.Reader) io.Reader { return r }, nil
	case "euc-kr", "euckr", "cp949":
		return krholiday.DecodeEUCKR, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

func readFile(path string, decode func(io.Reader) io.Reader) ([]krholiday.OverrideRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return krholiday.ReadOverrideRecords(decode(f))
}

// validateCSVURL checks that a URL points to an allowed host (SSRF prevention).
func validateCSVURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("URL %q: only HTTPS is allowed", rawURL)
	}
	if !allowedCSVHosts[parsed.Hostname()] {
		return fmt.Errorf("URL %q: host %q is not in the allowed list", rawURL, parsed.Hostname())
	}
	return nil
}

// fetchWithRetry fetches a URL with exponential backoff retries. The body is
// read fully so the connection is released before parsing.
func fetchWithRetry(ctx context.Context, client *http.Client, url string) (io.Reader, error) {
	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			log.Printf("  retrying in %v (attempt %d/%d)", delay, attempt+1, maxRetries)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		log.Printf("fetching %s", url)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("GET %s: %w", url, err)
			log.Printf("  failed: %v", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
			log.Printf("  failed: status %d (retryable)", resp.StatusCode)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxCSVResponseSize))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", url, err)
		}
		return bytes.NewReader(body), nil
	}
	return nil, lastErr
}

// generate validates, sorts and deduplicates records and encodes them as the
// canonical override CSV. Later records replace earlier ones of the same
// date. It returns the file contents and the number of rows.
func generate(records []krholiday.OverrideRecord) ([]byte, int, error) {
	byDate := make(map[string]krholiday.OverrideRecord, len(records))
	for i, rec := range records {
		o, err := rec.Override()
		if err != nil {
			return nil, 0, fmt.Errorf("record %d: %w", i+1, err)
		}
		day := o.Date.Format("2006-01-02")
		byDate[day] = krholiday.OverrideRecord{Date: day, Local: o.Name.Local, English: o.Name.English}
	}

	out := make([]krholiday.OverrideRecord, 0, len(byDate))
	for _, rec := range byDate {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })

	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)
	if len(out) == 0 {
		if err := enc.EncodeHeader(krholiday.OverrideRecord{}); err != nil {
			return nil, 0, err
		}
	}
	for _, rec := range out {
		if err := enc.Encode(rec); err != nil {
			return nil, 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), len(out), nil
}

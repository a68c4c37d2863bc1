package contract

import (
	"encoding/json"
	"fmt"

	"github.com/xuperchain/xstake/kernel/common/xaddress"
)

const (
	// StatusOK is used when contract successfully ends.
	StatusOK = 200
	// StatusErrorThreshold is the status dividing line for the normal operation of the contract
	StatusErrorThreshold = 400
	// StatusError is used when contract fails.
	StatusError = 500
)

// Attribute is a key/value pair describing what an invocation did.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SubMsg is an outbound message the host delivers to Contract after a successful commit.
type SubMsg struct {
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
}

// Response is the result of the contract run
type Response struct {
	// Status 用于反映合约的运行结果的错误码
	Status int `json:"status"`
	// Message 用于携带一些有用的debug信息
	Message string `json:"message"`
	// Data 字段用于存储合约执行的结果
	Body       []byte      `json:"body"`
	Attributes []Attribute `json:"attributes,omitempty"`
	Messages   []*SubMsg   `json:"messages,omitempty"`
}

// HasError reports whether the status is an error status.
func (r *Response) HasError() bool {
	return r.Status >= StatusErrorThreshold
}

// AddAttribute appends an attribute and returns the response for chaining.
func (r *Response) AddAttribute(key, value string) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: value})
	return r
}

// AddMessage appends an outbound message.
func (r *Response) AddMessage(msg *SubMsg) *Response {
	r.Messages = append(r.Messages, msg)
	return r
}

// Attribute returns the first value stored under key.
func (r *Response) Attribute(key string) (string, bool) {
	for _, attr := range r.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// ContextConfig define the config of context
type ContextConfig struct {
	State StateSandbox

	Initiator    string
	BlockTime    uint64
	ContractName string
	Args         map[string][]byte

	// nil accepts any address
	AddrValidator xaddress.Validator
}

type kcontextImpl struct {
	cfg *ContextConfig
	StateSandbox
}

// NewKContext builds the context a kernel method runs in.
func NewKContext(cfg *ContextConfig) (KContext, error) {
	if cfg == nil || cfg.State == nil {
		return nil, fmt.Errorf("new kernel context failed because state is missing")
	}
	if cfg.Args == nil {
		cfg.Args = make(map[string][]byte)
	}
	return &kcontextImpl{
		cfg:          cfg,
		StateSandbox: cfg.State,
	}, nil
}

func (k *kcontextImpl) Args() map[string][]byte {
	return k.cfg.Args
}

func (k *kcontextImpl) Initiator() string {
	return k.cfg.Initiator
}

func (k *kcontextImpl) BlockTime() uint64 {
	return k.cfg.BlockTime
}

func (k *kcontextImpl) ContractName() string {
	return k.cfg.ContractName
}

func (k *kcontextImpl) AddrValidate(addr string) error {
	if k.cfg.AddrValidator == nil {
		if addr == "" {
			return xaddress.ErrEmptyAddress
		}
		return nil
	}
	return k.cfg.AddrValidator.Validate(addr)
}

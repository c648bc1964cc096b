package policy

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/maheshrc27/editorial-api/internal/models"
)

const DocumentVersion = 1

// ClientScopeOwner marks that client-role subjects only match resources owned
// by their assigned client.
const ClientScopeOwner = "owner"

// Document is the declarative form of the table, consumed by the store's own
// rule evaluator.
type Document struct {
	Version     int    `json:"version"`
	ClientScope string `json:"client_scope"`
	Rules       []Rule `json:"rules"`
}

func Export() Document {
	return Document{
		Version:     DocumentVersion,
		ClientScope: ClientScopeOwner,
		Rules:       Rules(),
	}
}

func ExportJSON() ([]byte, error) {
	return json.MarshalIndent(Export(), "", "  ")
}

func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("invalid policy document: %w", err)
	}
	if doc.Version != DocumentVersion {
		return Document{}, fmt.Errorf("unsupported policy document version %d", doc.Version)
	}
	return doc, nil
}

type ruleKey struct {
	resource ResourceType
	action   Action
	role     models.Role
}

type compiledRule struct {
	from   map[models.PostStatus]struct{}
	to     models.PostStatus
	fields map[models.ContentField]struct{}
}

// Evaluator answers decisions from an exported document using indexed
// lookups, the way a declarative store rule engine would.
type Evaluator struct {
	ownerScoped bool
	index       map[ruleKey][]compiledRule
}

func Compile(doc Document) *Evaluator {
	e := &Evaluator{
		ownerScoped: doc.ClientScope == ClientScopeOwner,
		index:       make(map[ruleKey][]compiledRule),
	}
	for _, r := range doc.Rules {
		cr := compiledRule{to: r.To}
		if len(r.From) > 0 {
			cr.from = make(map[models.PostStatus]struct{}, len(r.From))
			for _, s := range r.From {
				cr.from[s] = struct{}{}
			}
		}
		cr.fields = make(map[models.ContentField]struct{}, len(r.Fields))
		for _, f := range r.Fields {
			cr.fields[f] = struct{}{}
		}
		for _, role := range r.Roles {
			k := ruleKey{resource: r.Resource, action: r.Action, role: role}
			e.index[k] = append(e.index[k], cr)
		}
	}
	return e
}

func (e *Evaluator) Allow(user *models.User, action Action, res Resource) bool {
	if user == nil {
		return false
	}
	if e.ownerScoped && user.Role == models.RoleClient {
		if clientID, ok := user.ClientScope(); !ok || clientID != res.OwnerClientID {
			return false
		}
	}
	for _, cr := range e.index[ruleKey{resource: res.Type, action: action, role: user.Role}] {
		if cr.from != nil {
			if _, ok := cr.from[res.CurrentStatus]; !ok {
				continue
			}
		}
		if action == ActionTransition && cr.to != res.RequestedStatus {
			continue
		}
		fieldsOK := true
		for _, f := range res.Fields {
			if _, ok := cr.fields[f]; !ok {
				fieldsOK = false
				break
			}
		}
		if fieldsOK {
			return true
		}
	}
	return false
}

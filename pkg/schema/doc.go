// Package schema checks the data payloads submitted for input nodes.
//
// A Schema maps data keys to their expected types:
//
//	s := schema.Schema{
//	    "proposal.cost": schema.Float(),
//	    "proposal.start": schema.Date(),
//	}
//	if err := schema.Validate(s, data); err != nil {
//	    // errors.Is(err, schema.ErrInvalid)
//	}
//
// ForNode derives the schema of an input node from its type and fn, so that
// transports can reject malformed answers before they reach the ledger.
package schema

// Package protocol is the message model of the Tank Royale bot protocol.
//
// Every frame is a JSON object whose "type" field names one of the shapes in this
// package. Decode is total over well-formed envelopes: a discriminator outside the known
// vocabulary decodes to *Unrecognized rather than failing, so a bot keeps working when
// the server grows new messages. Optional fields are pointers (or nil slices) so that an
// absent field is never confused with an explicit zero value.
package protocol

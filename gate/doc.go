// Package gate decides, per HTTP request, whether the caller may reach the
// protected editor service.
//
// A Gate is built once from an immutable credential.Set and a Policy that
// maps endpoint classes to a required token scope and a denial message.
// Each request is classified ("/metrics" is the metrics class, everything
// else is general), its "Authorization: Bearer <token>" header is checked
// against the token allow-list in constant time, and the result is either
// admission or a 401 with a JSON body:
//
//	{"error":"Unauthorized","message":"..."}
//
// Decide is a pure read and is safe for concurrent use.
package gate

// Package pathquery parses PathQuery XML into a normalized query model.
//
// A PathQuery describes a structured query over a typed data model using
// dotted field paths:
//
//	<query view="Gene.symbol Gene.length" sortOrder="Gene.symbol asc">
//	  <join path="Gene.organism" style="OUTER"/>
//	  <constraint path="Gene.symbol" op="ONE OF" code="A">
//	    <value>eve</value>
//	    <value>zen</value>
//	  </constraint>
//	</query>
//
// Parse converts such a document into a Query: the selected paths, the
// root class (explicit or inferred from the first path), sort order,
// constraint logic, outer joins, and constraints. The package also renders
// queries as RFC 8785 canonical JSON and derives content-addressed
// fingerprints from that form, so equivalent queries share a fingerprint
// regardless of attribute order or whitespace in the source document.
//
// Parsing fails only for malformed markup or a missing view declaration.
// No business semantics are checked: constraint paths are not validated
// against any model, and operators pass through untouched.
package pathquery

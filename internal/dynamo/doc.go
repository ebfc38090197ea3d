// Package dynamo provides the flat vector types shared by every layer of the
// simulation core: the generalised state x = (q, v), generalised force
// vectors, and the small set of arithmetic helpers (Add, Sub, Scale, Norm,
// IsValid) that the integrators and dynamics assembler build on.
//
// dynamo intentionally knows nothing about kinematics, contacts, or control —
// those live in [rigidbody], [contacts]/[joints], and [controller]
// respectively. Keeping this package free of those concerns is what lets the
// stepper stay generic over any [rigidbody.Model].
package dynamo

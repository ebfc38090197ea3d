package main

import (
	"fmt"

	"github.com/san-kum/rigidsim/internal/controller"
	"github.com/san-kum/rigidsim/internal/rigidbody"
)

// buildModel constructs a named rigidbody.Model plus its default initial
// state, mirroring the teacher's experiment.Registry.GetModel but over the
// closed-form robots rigidbody provides (spec.md §9's "handful of concrete
// models" rather than the teacher's full experiment catalogue).
func buildModel(name string, mass, radius float64) (rigidbody.Model, []float64, error) {
	switch name {
	case "pendulum":
		m := rigidbody.NewPendulum()
		return m, []float64{initTheta, initOmega}, nil
	case "double_pendulum":
		m := rigidbody.NewDoublePendulum()
		return m, []float64{initTheta, initTheta2, initOmega, initOmega2}, nil
	case "free_flyer":
		m := rigidbody.NewFreeFlyer(mass, radius)
		x0 := make([]float64, m.Nx())
		x0[2] = initHeight
		x0[6] = 1 // identity quaternion (w component)
		return m, x0, nil
	default:
		return nil, nil, fmt.Errorf("unknown model: %s (want pendulum, double_pendulum, free_flyer)", name)
	}
}

// buildController mirrors the teacher's registry.GetController, narrowed to
// the controllers this port carries (spec.md §6.1's AbstractController
// boundary): none, manual, pid, lqr.
func buildController(name string, nmotors int) (controller.AbstractController, error) {
	switch name {
	case "none":
		return controller.NewNone(), nil
	case "manual":
		return controller.NewManual(nmotors), nil
	case "pid":
		return controller.NewPID(kp, ki, kd, target), nil
	case "lqr":
		switch nmotors {
		case 1:
			return controller.NewPendulumLQR(), nil
		default:
			return controller.NewDoublePendulumLQR(), nil
		}
	default:
		return nil, fmt.Errorf("unknown controller: %s (want none, manual, pid, lqr)", name)
	}
}

// Package resilience bounds how much concurrent work the gateway accepts.
//
// An Admission hands out a fixed number of slots. A check that cannot get a
// slot within the configured wait is refused with ErrSaturated instead of
// queueing without limit behind slow requests:
//
//	adm := resilience.NewAdmission(resilience.AdmissionConfig{
//	    MaxInFlight: 256,
//	    MaxWait:     50 * time.Millisecond,
//	})
//	release, err := adm.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer release()
package resilience
